package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/memory"
	tournamentmock "github.com/riskibarqy/fantasy-cricket/internal/mocks/domain/tournament"
	"github.com/stretchr/testify/mock"
)

const testTournamentID = "cup"

var fixedNow = time.Date(2026, 4, 10, 18, 30, 0, 0, time.UTC)

type stubCommentator struct{}

func (stubCommentator) Commentary(category match.Category, value int) string {
	return fmt.Sprintf("%s:%d", category, value)
}

type scriptedSampler struct {
	mu       sync.Mutex
	outcomes []match.Outcome
	next     int
}

func (s *scriptedSampler) Next() match.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.outcomes) {
		return match.OutcomeDot
	}
	o := s.outcomes[s.next]
	s.next++
	return o
}

// headsCoin always hands the toss to team1, who bats.
type headsCoin struct{}

func (headsCoin) Intn(int) int { return 0 }

type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("m%d", g.n), nil
}

type recordingRefresher struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingRefresher) Refresh(_ context.Context, tournamentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, tournamentID)
}

func (r *recordingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func squad(teamID string) []string {
	ids := make([]string, 0, 11)
	for i := 1; i <= 11; i++ {
		ids = append(ids, fmt.Sprintf("%s-%d", teamID, i))
	}
	return ids
}

func testTournament(overs int, teamIDs ...string) tournament.Tournament {
	if len(teamIDs) == 0 {
		teamIDs = []string{"a", "b"}
	}
	t := tournament.Tournament{ID: testTournamentID, Name: "Test Cup", Overs: overs}
	for _, teamID := range teamIDs {
		t.Teams = append(t.Teams, tournament.Team{ID: teamID, Name: "Team " + teamID, PlayerIDs: squad(teamID)})
		for _, playerID := range squad(teamID) {
			t.Players = append(t.Players, tournament.Player{ID: playerID, Name: playerID, TeamID: teamID})
		}
	}
	return t
}

type serviceFixture struct {
	service   *MatchService
	repo      *memory.TournamentRepository
	refresher *recordingRefresher
	events    *eventLog
}

type eventLog struct {
	mu    sync.Mutex
	types []MatchEventType
}

func (l *eventLog) record(evt MatchEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.types = append(l.types, evt.Type)
}

func (l *eventLog) snapshot() []MatchEventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]MatchEventType(nil), l.types...)
}

func newServiceFixture(t *testing.T, repo tournament.Repository, sampler match.OutcomeSource, cfg MatchServiceConfig) serviceFixture {
	t.Helper()

	refresher := &recordingRefresher{}
	service := NewMatchService(repo, refresher, sampler, headsCoin{}, stubCommentator{}, &sequenceIDs{}, cfg, nil)
	service.now = func() time.Time { return fixedNow }

	events := &eventLog{}
	service.Subscribe(events.record)

	memRepo, _ := repo.(*memory.TournamentRepository)
	return serviceFixture{service: service, repo: memRepo, refresher: refresher, events: events}
}

func repeatOutcome(o match.Outcome, n int) []match.Outcome {
	out := make([]match.Outcome, n)
	for i := range out {
		out[i] = o
	}
	return out
}

func TestMatchService_CreateMatch(t *testing.T) {
	t.Parallel()

	repo := memory.NewTournamentRepository([]tournament.Tournament{testTournament(0)})
	fx := newServiceFixture(t, repo, &scriptedSampler{}, MatchServiceConfig{DefaultOvers: 20})
	ctx := context.Background()

	created, err := fx.service.CreateMatch(ctx, CreateMatchInput{
		TournamentID: testTournamentID,
		Team1ID:      "a",
		Team2ID:      "b",
		MatchType:    "T10",
		Venue:        " Eden Gardens ",
	})
	if err != nil {
		t.Fatalf("CreateMatch error: %v", err)
	}
	if created.ID != "m1" || created.Status != match.StatusScheduled || created.Overs != 10 {
		t.Fatalf("unexpected match: id=%s status=%s overs=%d", created.ID, created.Status, created.Overs)
	}
	if created.Venue != "Eden Gardens" || !created.ScheduledAt.Equal(fixedNow) {
		t.Fatalf("unexpected venue/date: %q %v", created.Venue, created.ScheduledAt)
	}
	if created.Team1Score.Score != 0 || created.Team2Score.TeamID != "b" {
		t.Fatalf("expected zeroed scorecards, got %+v %+v", created.Team1Score, created.Team2Score)
	}

	stored, _, _ := repo.GetTournament(ctx, testTournamentID)
	if len(stored.Matches) != 1 || stored.Matches[0].ID != "m1" {
		t.Fatalf("expected match appended to tournament, got %d", len(stored.Matches))
	}
	if schedule := fx.service.Schedule(); len(schedule) != 1 || schedule[0].ID != "m1" {
		t.Fatalf("expected match on schedule, got %+v", schedule)
	}
}

func TestMatchService_CreateMatch_Errors(t *testing.T) {
	t.Parallel()

	repo := memory.NewTournamentRepository([]tournament.Tournament{testTournament(20)})
	fx := newServiceFixture(t, repo, &scriptedSampler{}, MatchServiceConfig{})
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateMatchInput
		want  error
	}{
		{name: "unknown tournament", input: CreateMatchInput{TournamentID: "nope", Team1ID: "a", Team2ID: "b"}, want: ErrNotFound},
		{name: "unknown team", input: CreateMatchInput{TournamentID: testTournamentID, Team1ID: "a", Team2ID: "z"}, want: ErrNotFound},
		{name: "same team", input: CreateMatchInput{TournamentID: testTournamentID, Team1ID: "a", Team2ID: "a"}, want: ErrInvalidInput},
		{name: "missing team", input: CreateMatchInput{TournamentID: testTournamentID, Team1ID: "a"}, want: ErrInvalidInput},
		{name: "too many overs", input: CreateMatchInput{TournamentID: testTournamentID, Team1ID: "a", Team2ID: "b", Overs: 60}, want: ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := fx.service.CreateMatch(ctx, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMatchService_CreateMatch_TournamentMissingUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := tournamentmock.NewRepository(t)
	repo.
		On("GetTournament", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), "ghost").
		Return(tournament.Tournament{}, false, nil).
		Once()

	service := NewMatchService(repo, nil, &scriptedSampler{}, headsCoin{}, stubCommentator{}, &sequenceIDs{}, MatchServiceConfig{}, nil)
	_, err := service.CreateMatch(ctx, CreateMatchInput{TournamentID: "ghost", Team1ID: "a", Team2ID: "b"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMatchService_CreateMatch_SaveFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := tournamentmock.NewRepository(t)
	repo.
		On("GetTournament", mock.Anything, testTournamentID).
		Return(testTournament(20), true, nil).
		Once()
	repo.
		On("UpdateTournament", mock.Anything, testTournamentID, mock.MatchedBy(func(p tournament.Patch) bool {
			return p.Matches != nil && len(*p.Matches) == 1 && p.CompletedMatches == nil
		})).
		Return(tournament.Tournament{}, errors.New("disk full")).
		Once()

	service := NewMatchService(repo, nil, &scriptedSampler{}, headsCoin{}, stubCommentator{}, &sequenceIDs{}, MatchServiceConfig{}, nil)
	if _, err := service.CreateMatch(ctx, CreateMatchInput{TournamentID: testTournamentID, Team1ID: "a", Team2ID: "b"}); err == nil {
		t.Fatalf("expected save error")
	}
	if len(service.Schedule()) != 0 {
		t.Fatalf("expected nothing scheduled after a failed save")
	}
}

func TestMatchService_FullLifecycle(t *testing.T) {
	t.Parallel()

	outcomes := append(repeatOutcome(match.OutcomeFour, 6), repeatOutcome(match.OutcomeSix, 5)...)
	repo := memory.NewTournamentRepository([]tournament.Tournament{testTournament(1)})
	fx := newServiceFixture(t, repo, &scriptedSampler{outcomes: outcomes}, MatchServiceConfig{})
	ctx := context.Background()

	if _, err := fx.service.SimulateBall(ctx); !errors.Is(err, ErrIllegalState) {
		t.Fatalf("expected ErrIllegalState without a live match, got %v", err)
	}

	created, err := fx.service.CreateMatch(ctx, CreateMatchInput{TournamentID: testTournamentID, Team1ID: "a", Team2ID: "b"})
	if err != nil {
		t.Fatalf("CreateMatch error: %v", err)
	}
	if _, err := fx.service.StartMatch(ctx, testTournamentID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a missing match, got %v", err)
	}

	live, err := fx.service.StartMatch(ctx, testTournamentID, created.ID)
	if err != nil {
		t.Fatalf("StartMatch error: %v", err)
	}
	if live.Status != match.StatusLive || live.TossWinnerID != "a" || live.BattingTeamID != "a" {
		t.Fatalf("unexpected started match: status=%s toss=%s batting=%s", live.Status, live.TossWinnerID, live.BattingTeamID)
	}
	if len(fx.service.Schedule()) != 0 {
		t.Fatalf("expected started match removed from schedule")
	}
	if _, err := fx.service.StartMatch(ctx, testTournamentID, created.ID); !errors.Is(err, ErrIllegalState) {
		t.Fatalf("expected ErrIllegalState while live, got %v", err)
	}

	var last match.Match
	for i := 0; i < len(outcomes); i++ {
		last, err = fx.service.SimulateBall(ctx)
		if err != nil {
			t.Fatalf("SimulateBall %d error: %v", i, err)
		}
		if i == 5 {
			if last.CurrentInnings != 2 || last.Target != 25 {
				t.Fatalf("expected innings 2 with target 25, got %d/%d", last.CurrentInnings, last.Target)
			}
		}
	}

	if last.Status != match.StatusCompleted || last.WinnerID != "b" {
		t.Fatalf("expected b to win, got status=%s winner=%s", last.Status, last.WinnerID)
	}
	if _, ok := fx.service.LiveMatch(); ok {
		t.Fatalf("expected live match cleared")
	}
	if _, err := fx.service.SimulateBall(ctx); !errors.Is(err, ErrIllegalState) {
		t.Fatalf("expected ErrIllegalState after completion, got %v", err)
	}

	stored, _, _ := repo.GetTournament(ctx, testTournamentID)
	if len(stored.CompletedMatches) != 1 || stored.CompletedMatches[0].WinnerID != "b" {
		t.Fatalf("expected completed match persisted, got %+v", stored.CompletedMatches)
	}
	if stored.Matches[0].Status != match.StatusCompleted {
		t.Fatalf("expected fixture list updated, got %s", stored.Matches[0].Status)
	}
	if fx.refresher.count() != 1 {
		t.Fatalf("expected one standings refresh, got %d", fx.refresher.count())
	}

	events := fx.events.snapshot()
	if len(events) != len(outcomes)+1 {
		t.Fatalf("expected %d events, got %d", len(outcomes)+1, len(events))
	}
	if events[0] != MatchEventStarted || events[len(events)-1] != MatchEventCompleted {
		t.Fatalf("unexpected event order: %v", events)
	}
}

func TestMatchService_StartMatch_AlreadyCompleted(t *testing.T) {
	t.Parallel()

	item := testTournament(1)
	m, err := match.New(match.NewInput{ID: "done", TournamentID: item.ID, Team1: item.Teams[0].TeamRef(), Team2: item.Teams[1].TeamRef(), Overs: 1}, fixedNow)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	m.Status = match.StatusCompleted
	item.Matches = []match.Match{m}

	fx := newServiceFixture(t, memory.NewTournamentRepository([]tournament.Tournament{item}), &scriptedSampler{}, MatchServiceConfig{})
	if _, err := fx.service.StartMatch(context.Background(), item.ID, "done"); !errors.Is(err, ErrIllegalState) {
		t.Fatalf("expected ErrIllegalState, got %v", err)
	}
}

type blockingSampler struct {
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSampler) Next() match.Outcome {
	s.entered <- struct{}{}
	<-s.release
	return match.OutcomeOne
}

func TestMatchService_SimulateBall_RejectsReentry(t *testing.T) {
	t.Parallel()

	sampler := &blockingSampler{entered: make(chan struct{}), release: make(chan struct{})}
	repo := memory.NewTournamentRepository([]tournament.Tournament{testTournament(20)})
	fx := newServiceFixture(t, repo, sampler, MatchServiceConfig{})
	ctx := context.Background()

	created, err := fx.service.CreateMatch(ctx, CreateMatchInput{TournamentID: testTournamentID, Team1ID: "a", Team2ID: "b"})
	if err != nil {
		t.Fatalf("CreateMatch error: %v", err)
	}
	if _, err := fx.service.StartMatch(ctx, testTournamentID, created.ID); err != nil {
		t.Fatalf("StartMatch error: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := fx.service.SimulateBall(ctx)
		done <- err
	}()
	<-sampler.entered

	if _, err := fx.service.SimulateBall(ctx); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if _, err := fx.service.SimulateScheduled(ctx, testTournamentID); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy for batch, got %v", err)
	}

	close(sampler.release)
	if err := <-done; err != nil {
		t.Fatalf("first SimulateBall error: %v", err)
	}
	live, ok := fx.service.LiveMatch()
	if !ok || live.Team1Score.Score != 1 {
		t.Fatalf("expected one run on the board, got %+v", live.Team1Score)
	}
}

type flakyRepository struct {
	*memory.TournamentRepository
	mu   sync.Mutex
	fail bool
}

func (r *flakyRepository) setFail(v bool) {
	r.mu.Lock()
	r.fail = v
	r.mu.Unlock()
}

func (r *flakyRepository) UpdateTournament(ctx context.Context, tournamentID string, patch tournament.Patch) (tournament.Tournament, error) {
	r.mu.Lock()
	fail := r.fail
	r.mu.Unlock()
	if fail {
		return tournament.Tournament{}, fmt.Errorf("%w: write rejected", ErrDependencyUnavailable)
	}
	return r.TournamentRepository.UpdateTournament(ctx, tournamentID, patch)
}

func TestMatchService_FailedFinishKeepsPublishedMatch(t *testing.T) {
	t.Parallel()

	outcomes := append(repeatOutcome(match.OutcomeDot, 6), match.OutcomeOne, match.OutcomeOne, match.OutcomeOne)
	repo := &flakyRepository{TournamentRepository: memory.NewTournamentRepository([]tournament.Tournament{testTournament(1)})}
	fx := newServiceFixture(t, repo, &scriptedSampler{outcomes: outcomes}, MatchServiceConfig{})
	ctx := context.Background()

	created, err := fx.service.CreateMatch(ctx, CreateMatchInput{TournamentID: testTournamentID, Team1ID: "a", Team2ID: "b"})
	if err != nil {
		t.Fatalf("CreateMatch error: %v", err)
	}
	if _, err := fx.service.StartMatch(ctx, testTournamentID, created.ID); err != nil {
		t.Fatalf("StartMatch error: %v", err)
	}
	for i := 0; i < 6; i++ {
		if _, err := fx.service.SimulateBall(ctx); err != nil {
			t.Fatalf("SimulateBall %d error: %v", i, err)
		}
	}

	repo.setFail(true)
	if _, err := fx.service.SimulateBall(ctx); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	live, ok := fx.service.LiveMatch()
	if !ok || live.Status != match.StatusLive || live.Team2Score.Score != 0 {
		t.Fatalf("expected the published match unchanged, got ok=%v %+v", ok, live.Team2Score)
	}

	repo.setFail(false)
	finished, err := fx.service.SimulateBall(ctx)
	if err != nil {
		t.Fatalf("SimulateBall after recovery error: %v", err)
	}
	if finished.Status != match.StatusCompleted || finished.WinnerID != "b" {
		t.Fatalf("expected b to win, got %s %s", finished.Status, finished.WinnerID)
	}
}

func TestMatchService_LoadState(t *testing.T) {
	t.Parallel()

	item := testTournament(20)
	scheduled, _ := match.New(match.NewInput{ID: "s1", TournamentID: item.ID, Team1: item.Teams[0].TeamRef(), Team2: item.Teams[1].TeamRef(), Overs: 20}, fixedNow)
	live, err := match.Start(scheduled, match.Toss{WinnerID: "a", Decision: match.TossBat}, stubCommentator{}, fixedNow)
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	live.ID = "l1"
	item.Matches = []match.Match{scheduled, live}

	fx := newServiceFixture(t, memory.NewTournamentRepository([]tournament.Tournament{item}), &scriptedSampler{}, MatchServiceConfig{})
	if err := fx.service.LoadState(context.Background()); err != nil {
		t.Fatalf("LoadState error: %v", err)
	}

	got, ok := fx.service.LiveMatch()
	if !ok || got.ID != "l1" {
		t.Fatalf("expected l1 restored as live, got ok=%v id=%s", ok, got.ID)
	}
	if schedule := fx.service.Schedule(); len(schedule) != 1 || schedule[0].ID != "s1" {
		t.Fatalf("expected s1 on schedule, got %+v", schedule)
	}
}

func TestMatchService_SimulateScheduled(t *testing.T) {
	t.Parallel()

	run := func() (BatchResult, tournament.Tournament, serviceFixture) {
		repo := memory.NewTournamentRepository([]tournament.Tournament{testTournament(2, "a", "b", "c")})
		fx := newServiceFixture(t, repo, &scriptedSampler{}, MatchServiceConfig{BatchWorkers: 2, Seed: 99})
		ctx := context.Background()

		pairs := [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}}
		for _, pair := range pairs {
			if _, err := fx.service.CreateMatch(ctx, CreateMatchInput{TournamentID: testTournamentID, Team1ID: pair[0], Team2ID: pair[1]}); err != nil {
				t.Fatalf("CreateMatch error: %v", err)
			}
		}

		result, err := fx.service.SimulateScheduled(ctx, testTournamentID)
		if err != nil {
			t.Fatalf("SimulateScheduled error: %v", err)
		}
		stored, _, _ := repo.GetTournament(ctx, testTournamentID)
		return result, stored, fx
	}

	first, stored, fx := run()
	if first.Simulated != 3 || first.Failed != 0 || first.WorkerCount != 2 || first.Seed != 99 {
		t.Fatalf("unexpected batch result: %+v", first)
	}
	if len(stored.CompletedMatches) != 3 {
		t.Fatalf("expected 3 completed matches, got %d", len(stored.CompletedMatches))
	}
	for _, m := range stored.Matches {
		if m.Status != match.StatusCompleted {
			t.Fatalf("expected every fixture completed, %s is %s", m.ID, m.Status)
		}
		if (m.WinnerID != "") == m.IsTied {
			t.Fatalf("match %s has inconsistent result", m.ID)
		}
	}
	if len(fx.service.Schedule()) != 0 {
		t.Fatalf("expected schedule drained")
	}
	if fx.refresher.count() != 1 {
		t.Fatalf("expected one refresh, got %d", fx.refresher.count())
	}
	if len(fx.events.snapshot()) != 0 {
		t.Fatalf("batch simulation must not publish live events")
	}

	second, _, _ := run()
	for i := range first.Matches {
		if first.Matches[i].MatchID != second.Matches[i].MatchID || first.Matches[i].Result != second.Matches[i].Result {
			t.Fatalf("expected a seeded batch to replay, got %+v vs %+v", first.Matches[i], second.Matches[i])
		}
	}
}

func TestMatchService_SimulateScheduled_RefusedWhileLive(t *testing.T) {
	t.Parallel()

	repo := memory.NewTournamentRepository([]tournament.Tournament{testTournament(1)})
	fx := newServiceFixture(t, repo, &scriptedSampler{}, MatchServiceConfig{})
	ctx := context.Background()

	created, err := fx.service.CreateMatch(ctx, CreateMatchInput{TournamentID: testTournamentID, Team1ID: "a", Team2ID: "b"})
	if err != nil {
		t.Fatalf("CreateMatch error: %v", err)
	}
	if _, err := fx.service.StartMatch(ctx, testTournamentID, created.ID); err != nil {
		t.Fatalf("StartMatch error: %v", err)
	}
	if _, err := fx.service.SimulateScheduled(ctx, testTournamentID); !errors.Is(err, ErrIllegalState) {
		t.Fatalf("expected ErrIllegalState, got %v", err)
	}
}
