package usecase

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/standings"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/cache"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

const standingsCachePrefix = "standings:"

// Standings is the derived view of one tournament's completed matches.
type Standings struct {
	TournamentID string                     `json:"tournamentId"`
	PointsTable  []standings.PointsTableRow `json:"pointsTable"`
	Leaderboards standings.Leaderboards     `json:"leaderboards"`
	Skipped      []standings.SkippedMatch   `json:"skipped,omitempty"`
}

// StatsService derives standings from the completed-match list. Results are
// cached per tournament and dropped whenever a match finishes.
type StatsService struct {
	tournamentRepo tournament.Repository
	cache          *cache.Store
	logger         *logging.Logger
}

func NewStatsService(tournamentRepo tournament.Repository, store *cache.Store, logger *logging.Logger) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsService{
		tournamentRepo: tournamentRepo,
		cache:          store,
		logger:         logger,
	}
}

func (s *StatsService) PointsTable(ctx context.Context, tournamentID string) ([]standings.PointsTableRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.PointsTable", tournamentAttr(tournamentID))
	defer span.End()

	view, err := s.get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return view.PointsTable, nil
}

func (s *StatsService) Leaderboards(ctx context.Context, tournamentID string) (standings.Leaderboards, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Leaderboards", tournamentAttr(tournamentID))
	defer span.End()

	view, err := s.get(ctx, tournamentID)
	if err != nil {
		return standings.Leaderboards{}, err
	}
	return view.Leaderboards, nil
}

// Refresh invalidates the cached view and recomputes it from the repository.
// It bypasses the shared load so a computation that started before the
// completed-match set changed is never reused. Failures are logged only;
// standings never block the match flow.
func (s *StatsService) Refresh(ctx context.Context, tournamentID string) {
	key := standingsCachePrefix + tournamentID
	var generation uint64
	if s.cache != nil {
		generation = s.cache.Delete(ctx, key)
	}

	view, err := s.compute(ctx, tournamentID)
	if err != nil {
		s.logger.WarnContext(ctx, "recompute standings failed", "tournament_id", tournamentID, "error", err)
		return
	}
	if s.cache != nil && !s.cache.SetIfGeneration(ctx, key, view, generation) {
		s.logger.DebugContext(ctx, "newer standings invalidation won, result not cached", "tournament_id", tournamentID)
	}

	leader := ""
	if len(view.PointsTable) > 0 {
		leader = view.PointsTable[0].TeamID
	}
	s.logger.InfoContext(ctx, "standings recomputed",
		"tournament_id", tournamentID,
		"teams", len(view.PointsTable),
		"leader", leader,
		"skipped", len(view.Skipped),
	)
}

func (s *StatsService) get(ctx context.Context, tournamentID string) (Standings, error) {
	if s.cache == nil {
		return s.compute(ctx, tournamentID)
	}

	value, err := s.cache.GetOrLoad(ctx, standingsCachePrefix+tournamentID, func(ctx context.Context) (any, error) {
		return s.compute(ctx, tournamentID)
	})
	if err != nil {
		return Standings{}, err
	}
	view, ok := value.(Standings)
	if !ok {
		return Standings{}, fmt.Errorf("unexpected cached standings type %T", value)
	}
	return view, nil
}

func (s *StatsService) compute(ctx context.Context, tournamentID string) (Standings, error) {
	t, exists, err := s.tournamentRepo.GetTournament(ctx, tournamentID)
	if err != nil {
		return Standings{}, fmt.Errorf("get tournament: %w", err)
	}
	if !exists {
		return Standings{}, fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
	}

	view := Standings{TournamentID: t.ID}
	var table standings.PointsTable
	var tableSkipped, statsSkipped []standings.SkippedMatch

	var wg conc.WaitGroup
	wg.Go(func() {
		table, tableSkipped = standings.GeneratePointsTable(t.Teams, t.CompletedMatches)
	})
	wg.Go(func() {
		view.Leaderboards, statsSkipped = standings.GeneratePerformanceStats(t.Teams, t.Players, t.CompletedMatches)
	})
	if recovered := wg.WaitAndRecover(); recovered != nil {
		// Degrade to empty standings instead of failing the caller.
		s.logger.ErrorContext(ctx, "standings aggregation panicked",
			"tournament_id", tournamentID,
			"panic", recovered.String(),
		)
		return Standings{
			TournamentID: t.ID,
			PointsTable:  []standings.PointsTableRow{},
			Leaderboards: standings.Leaderboards{
				MostRuns:          []standings.PerformanceStat{},
				MostWickets:       []standings.PerformanceStat{},
				BestEconomy:       []standings.PerformanceStat{},
				HighestStrikeRate: []standings.PerformanceStat{},
			},
		}, nil
	}

	view.PointsTable = standings.SortedPointsTable(table)
	view.Skipped = mergeSkipped(tableSkipped, statsSkipped)
	for _, skipped := range view.Skipped {
		s.logger.WarnContext(ctx, "skip malformed completed match",
			"tournament_id", tournamentID,
			"match_id", skipped.MatchID,
			"reason", skipped.Reason,
		)
	}
	return view, nil
}

func mergeSkipped(a, b []standings.SkippedMatch) []standings.SkippedMatch {
	seen := make(map[string]struct{}, len(a))
	out := make([]standings.SkippedMatch, 0, len(a)+len(b))
	for _, items := range [][]standings.SkippedMatch{a, b} {
		for _, item := range items {
			if _, ok := seen[item.MatchID]; ok {
				continue
			}
			seen[item.MatchID] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}
