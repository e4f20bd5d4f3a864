package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/id"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

type MatchEventType string

const (
	MatchEventStarted   MatchEventType = "match_started"
	MatchEventBall      MatchEventType = "ball"
	MatchEventCompleted MatchEventType = "match_completed"
)

// MatchEvent is delivered to subscribers after the live match changes.
type MatchEvent struct {
	Type  MatchEventType `json:"type"`
	Match match.Match    `json:"match"`
}

type CreateMatchInput struct {
	TournamentID string
	Team1ID      string
	Team2ID      string
	MatchType    string
	Venue        string
	ScheduledAt  time.Time
	Overs        int
}

type MatchServiceConfig struct {
	DefaultOvers int
	BatchWorkers int
	// Seed drives batch simulation; zero picks a time-based seed per batch.
	Seed int64
}

type standingsRefresher interface {
	Refresh(ctx context.Context, tournamentID string)
}

// MatchService is the sole mutator of the live match. Only one match can be
// live at a time and SimulateBall is not re-entrant.
type MatchService struct {
	tournamentRepo tournament.Repository
	stats          standingsRefresher
	sampler        match.OutcomeSource
	coin           match.RandomSource
	commentator    match.Commentator
	idGen          id.Generator
	cfg            MatchServiceConfig
	logger         *logging.Logger
	now            func() time.Time

	mu       sync.Mutex
	busy     bool
	live     *match.Match
	schedule []match.Match

	// repoMu serializes read-modify-write cycles on tournaments. It may be held
	// while taking mu, never the reverse.
	repoMu sync.Mutex

	subMu       sync.RWMutex
	subscribers map[int]func(MatchEvent)
	nextSubID   int
}

func NewMatchService(
	tournamentRepo tournament.Repository,
	stats standingsRefresher,
	sampler match.OutcomeSource,
	coin match.RandomSource,
	commentator match.Commentator,
	idGen id.Generator,
	cfg MatchServiceConfig,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewRandomGenerator("match")
	}
	if cfg.DefaultOvers < 1 || cfg.DefaultOvers > match.MaxOvers {
		cfg.DefaultOvers = match.DefaultOvers
	}
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = 4
	}

	return &MatchService{
		tournamentRepo: tournamentRepo,
		stats:          stats,
		sampler:        sampler,
		coin:           coin,
		commentator:    commentator,
		idGen:          idGen,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
		subscribers:    make(map[int]func(MatchEvent)),
	}
}

// LoadState rebuilds the in-memory schedule and restores a match left live in
// storage.
func (s *MatchService) LoadState(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.LoadState")
	defer span.End()

	items, err := s.tournamentRepo.ListTournaments(ctx)
	if err != nil {
		return fmt.Errorf("list tournaments: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.schedule = s.schedule[:0]
	for _, t := range items {
		for _, m := range t.Matches {
			switch m.Status {
			case match.StatusScheduled:
				s.schedule = append(s.schedule, m.Clone())
			case match.StatusLive:
				if s.live != nil {
					s.logger.WarnContext(ctx, "ignore extra live match on load", "tournament_id", t.ID, "match_id", m.ID)
					continue
				}
				restored := m.Clone()
				s.live = &restored
			}
		}
	}
	return nil
}

// Subscribe registers fn for match events. Handlers run on the publishing
// goroutine after the state change is visible, so they must not block.
func (s *MatchService) Subscribe(fn func(MatchEvent)) (unsubscribe func()) {
	s.subMu.Lock()
	subID := s.nextSubID
	s.nextSubID++
	s.subscribers[subID] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, subID)
		s.subMu.Unlock()
	}
}

func (s *MatchService) publish(evt MatchEvent) {
	s.subMu.RLock()
	handlers := make([]func(MatchEvent), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		handlers = append(handlers, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range handlers {
		fn(MatchEvent{Type: evt.Type, Match: evt.Match.Clone()})
	}
}

// LiveMatch returns a snapshot of the live match.
func (s *MatchService) LiveMatch() (match.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live == nil {
		return match.Match{}, false
	}
	return s.live.Clone(), true
}

// Schedule returns the fixtures waiting to be started.
func (s *MatchService) Schedule() []match.Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]match.Match, 0, len(s.schedule))
	for _, m := range s.schedule {
		out = append(out, m.Clone())
	}
	return out
}

func (s *MatchService) CreateMatch(ctx context.Context, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.CreateMatch", tournamentAttr(input.TournamentID))
	defer span.End()

	input.TournamentID = strings.TrimSpace(input.TournamentID)
	input.Team1ID = strings.TrimSpace(input.Team1ID)
	input.Team2ID = strings.TrimSpace(input.Team2ID)
	if input.TournamentID == "" || input.Team1ID == "" || input.Team2ID == "" {
		return match.Match{}, fmt.Errorf("%w: tournament id and both team ids are required", ErrInvalidInput)
	}
	if input.Team1ID == input.Team2ID {
		return match.Match{}, fmt.Errorf("%w: a team cannot play itself", ErrInvalidInput)
	}

	s.repoMu.Lock()
	defer s.repoMu.Unlock()

	t, exists, err := s.tournamentRepo.GetTournament(ctx, input.TournamentID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get tournament: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: tournament=%s", ErrNotFound, input.TournamentID)
	}
	team1, ok := t.TeamByID(input.Team1ID)
	if !ok {
		return match.Match{}, fmt.Errorf("%w: team=%s in tournament=%s", ErrNotFound, input.Team1ID, t.ID)
	}
	team2, ok := t.TeamByID(input.Team2ID)
	if !ok {
		return match.Match{}, fmt.Errorf("%w: team=%s in tournament=%s", ErrNotFound, input.Team2ID, t.ID)
	}

	matchID, err := s.idGen.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	overs := input.Overs
	if overs == 0 {
		fallback := t.Overs
		if fallback == 0 {
			fallback = s.cfg.DefaultOvers
		}
		overs = match.OversForType(input.MatchType, fallback)
	}

	now := s.now().UTC()
	scheduledAt := input.ScheduledAt
	if scheduledAt.IsZero() {
		scheduledAt = now
	}
	created, err := match.New(match.NewInput{
		ID:           matchID,
		TournamentID: t.ID,
		MatchType:    strings.TrimSpace(input.MatchType),
		Team1:        team1.TeamRef(),
		Team2:        team2.TeamRef(),
		Overs:        overs,
		Venue:        strings.TrimSpace(input.Venue),
		ScheduledAt:  scheduledAt,
	}, now)
	if err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	matches := append(t.Matches, created)
	if _, err := s.tournamentRepo.UpdateTournament(ctx, t.ID, tournament.Patch{Matches: &matches}); err != nil {
		return match.Match{}, fmt.Errorf("save match: %w", err)
	}

	s.mu.Lock()
	s.schedule = append(s.schedule, created.Clone())
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "match created",
		"tournament_id", t.ID,
		"match_id", created.ID,
		"team1", created.Team1.ID,
		"team2", created.Team2.ID,
		"overs", created.Overs,
	)
	return created, nil
}

func (s *MatchService) StartMatch(ctx context.Context, tournamentID, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.StartMatch", tournamentAttr(tournamentID), matchAttr(matchID))
	defer span.End()

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return match.Match{}, ErrBusy
	}
	if s.live != nil {
		liveID := s.live.ID
		s.mu.Unlock()
		return match.Match{}, fmt.Errorf("%w: match %s is already live", ErrIllegalState, liveID)
	}
	s.busy = true
	s.mu.Unlock()

	started, err := s.startMatch(ctx, tournamentID, matchID)

	s.mu.Lock()
	s.busy = false
	if err == nil {
		published := started.Clone()
		s.live = &published
		s.removeScheduled(started.ID)
	}
	s.mu.Unlock()
	if err != nil {
		return match.Match{}, err
	}

	s.logger.InfoContext(ctx, "match started",
		"tournament_id", started.TournamentID,
		"match_id", started.ID,
		"toss_winner", started.TossWinnerID,
		"toss_decision", started.TossDecision,
		"batting_team", started.BattingTeamID,
	)
	s.publish(MatchEvent{Type: MatchEventStarted, Match: started})
	return started, nil
}

func (s *MatchService) startMatch(ctx context.Context, tournamentID, matchID string) (match.Match, error) {
	s.repoMu.Lock()
	defer s.repoMu.Unlock()

	t, exists, err := s.tournamentRepo.GetTournament(ctx, tournamentID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get tournament: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
	}
	current, idx, ok := t.MatchByID(matchID)
	if !ok {
		return match.Match{}, fmt.Errorf("%w: match=%s in tournament=%s", ErrNotFound, matchID, tournamentID)
	}

	started, err := match.Start(current, match.ResolveToss(s.coin, current), s.commentator, s.now().UTC())
	if err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrIllegalState, err)
	}

	matches := t.Matches
	matches[idx] = started
	if _, err := s.tournamentRepo.UpdateTournament(ctx, t.ID, tournament.Patch{Matches: &matches}); err != nil {
		return match.Match{}, fmt.Errorf("save live match: %w", err)
	}
	return started, nil
}

// SimulateBall bowls one delivery on a private copy of the live match and
// publishes the result. On failure the published match is left untouched.
func (s *MatchService) SimulateBall(ctx context.Context) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SimulateBall")
	defer span.End()

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return match.Match{}, ErrBusy
	}
	if s.live == nil {
		s.mu.Unlock()
		return match.Match{}, fmt.Errorf("%w: no live match", ErrIllegalState)
	}
	s.busy = true
	working := s.live.Clone()
	s.mu.Unlock()

	next, err := match.ApplyBall(working, s.sampler.Next(), s.commentator, s.now().UTC())
	if err != nil {
		s.release()
		if errors.Is(err, match.ErrMatchCompleted) || errors.Is(err, match.ErrMatchNotLive) {
			return match.Match{}, fmt.Errorf("%w: %v", ErrIllegalState, err)
		}
		return match.Match{}, fmt.Errorf("simulate ball: %w", err)
	}

	if next.IsCompleted() {
		if err := s.finishMatch(ctx, next); err != nil {
			s.release()
			return match.Match{}, err
		}
		s.mu.Lock()
		s.live = nil
		s.busy = false
		s.mu.Unlock()

		s.publish(MatchEvent{Type: MatchEventCompleted, Match: next})
		return next, nil
	}

	s.mu.Lock()
	published := next.Clone()
	s.live = &published
	s.busy = false
	s.mu.Unlock()

	s.publish(MatchEvent{Type: MatchEventBall, Match: next})
	return next, nil
}

func (s *MatchService) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// finishMatch persists a completed match into the fixture list and the
// completed collection, then refreshes standings.
func (s *MatchService) finishMatch(ctx context.Context, finished match.Match) error {
	if err := s.persistCompleted(ctx, finished.TournamentID, []match.Match{finished}); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "match completed",
		"tournament_id", finished.TournamentID,
		"match_id", finished.ID,
		"winner", finished.WinnerID,
		"tied", finished.IsTied,
		"result", finished.Result,
	)
	if s.stats != nil {
		s.stats.Refresh(ctx, finished.TournamentID)
	}
	return nil
}

func (s *MatchService) persistCompleted(ctx context.Context, tournamentID string, finished []match.Match) error {
	s.repoMu.Lock()
	defer s.repoMu.Unlock()

	t, exists, err := s.tournamentRepo.GetTournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("get tournament: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
	}

	matches := t.Matches
	completed := t.CompletedMatches
	for _, m := range finished {
		matches = upsertMatch(matches, m)
		completed = upsertMatch(completed, m)
	}
	if _, err := s.tournamentRepo.UpdateTournament(ctx, tournamentID, tournament.Patch{
		Matches:          &matches,
		CompletedMatches: &completed,
	}); err != nil {
		return fmt.Errorf("save completed matches: %w", err)
	}
	return nil
}

func (s *MatchService) removeScheduled(matchID string) {
	out := s.schedule[:0]
	for _, m := range s.schedule {
		if m.ID != matchID {
			out = append(out, m)
		}
	}
	s.schedule = out
}

func upsertMatch(items []match.Match, m match.Match) []match.Match {
	for i := range items {
		if items[i].ID == m.ID {
			items[i] = m
			return items
		}
	}
	return append(items, m)
}
