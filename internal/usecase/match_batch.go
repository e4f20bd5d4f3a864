package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
)

// BatchMatchResult summarizes one headlessly simulated fixture.
type BatchMatchResult struct {
	MatchID    string `json:"matchId"`
	Result     string `json:"result,omitempty"`
	WinnerID   string `json:"winnerId,omitempty"`
	IsTied     bool   `json:"isTied"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

type BatchResult struct {
	TournamentID string             `json:"tournamentId"`
	Seed         int64              `json:"seed"`
	WorkerCount  int                `json:"workerCount"`
	Simulated    int                `json:"simulated"`
	Failed       int                `json:"failed"`
	Matches      []BatchMatchResult `json:"matches"`
}

// SimulateScheduled plays every scheduled fixture of a tournament to
// completion on a worker pool. Each fixture gets its own seeded sampler so a
// fixed seed replays the whole batch. It is refused while a match is live.
func (s *MatchService) SimulateScheduled(ctx context.Context, tournamentID string) (BatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SimulateScheduled", tournamentAttr(tournamentID))
	defer span.End()

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return BatchResult{}, ErrBusy
	}
	if s.live != nil {
		liveID := s.live.ID
		s.mu.Unlock()
		return BatchResult{}, fmt.Errorf("%w: match %s is live", ErrIllegalState, liveID)
	}
	s.busy = true
	s.mu.Unlock()
	defer s.release()

	t, exists, err := s.tournamentRepo.GetTournament(ctx, tournamentID)
	if err != nil {
		return BatchResult{}, fmt.Errorf("get tournament: %w", err)
	}
	if !exists {
		return BatchResult{}, fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
	}

	pending := make([]match.Match, 0, len(t.Matches))
	for _, m := range t.Matches {
		if m.Status == match.StatusScheduled {
			pending = append(pending, m)
		}
	}

	seed := s.cfg.Seed
	if seed == 0 {
		seed = s.now().UnixNano()
	}
	workerCount := s.cfg.BatchWorkers
	if workerCount > len(pending) {
		workerCount = len(pending)
	}
	result := BatchResult{
		TournamentID: tournamentID,
		Seed:         seed,
		WorkerCount:  workerCount,
		Matches:      make([]BatchMatchResult, 0, len(pending)),
	}
	if len(pending) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return BatchResult{}, crerr.Wrap(err, "create batch worker pool")
	}
	defer pool.Release()

	finished := make([]match.Match, len(pending))
	rows := make([]BatchMatchResult, len(pending))
	var batchErr error
	var errMu sync.Mutex

	var workers sync.WaitGroup
	for i, fixture := range pending {
		i, fixture := i, fixture
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			done, simErr := s.simulateHeadless(fixture, seed+int64(i))
			row := BatchMatchResult{MatchID: fixture.ID, DurationMs: time.Since(start).Milliseconds()}
			if simErr != nil {
				row.Error = simErr.Error()
				errMu.Lock()
				batchErr = crerr.CombineErrors(batchErr, crerr.Wrapf(simErr, "simulate match %s", fixture.ID))
				errMu.Unlock()
			} else {
				row.Result = done.Result
				row.WinnerID = done.WinnerID
				row.IsTied = done.IsTied
				finished[i] = done
			}
			rows[i] = row
		}); err != nil {
			workers.Done()
			return BatchResult{}, crerr.Wrap(err, "submit fixture to batch worker pool")
		}
	}
	workers.Wait()

	completed := make([]match.Match, 0, len(finished))
	for i, row := range rows {
		result.Matches = append(result.Matches, row)
		if row.Error != "" {
			result.Failed++
			continue
		}
		result.Simulated++
		completed = append(completed, finished[i])
	}
	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].MatchID < result.Matches[j].MatchID
	})

	if batchErr != nil {
		s.logger.WarnContext(ctx, "some fixtures failed to simulate",
			"tournament_id", tournamentID,
			"failed", result.Failed,
			"error", batchErr,
		)
	}
	if len(completed) == 0 {
		return result, nil
	}

	if err := s.persistCompleted(ctx, tournamentID, completed); err != nil {
		return BatchResult{}, err
	}

	s.mu.Lock()
	for _, m := range completed {
		s.removeScheduled(m.ID)
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "batch simulation finished",
		"tournament_id", tournamentID,
		"seed", seed,
		"workers", workerCount,
		"simulated", result.Simulated,
		"failed", result.Failed,
	)
	if s.stats != nil {
		s.stats.Refresh(ctx, tournamentID)
	}
	return result, nil
}

func (s *MatchService) simulateHeadless(fixture match.Match, seed int64) (match.Match, error) {
	rng := rand.New(rand.NewSource(seed))
	started, err := match.Start(fixture, match.ResolveToss(rng, fixture), s.commentator, s.now().UTC())
	if err != nil {
		return match.Match{}, err
	}
	return match.SimulateToCompletion(started, match.NewSampler(rng), s.commentator, func() time.Time {
		return s.now().UTC()
	})
}
