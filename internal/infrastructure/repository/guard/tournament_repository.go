package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
)

// TournamentRepository fails fast with usecase.ErrDependencyUnavailable while
// the backing store keeps erroring.
type TournamentRepository struct {
	next    tournament.Repository
	breaker *resilience.CircuitBreaker
}

func NewTournamentRepository(next tournament.Repository, cfg resilience.CircuitBreakerConfig) tournament.Repository {
	if !cfg.Enabled {
		return next
	}
	return &TournamentRepository{
		next:    next,
		breaker: resilience.NewCircuitBreaker(cfg),
	}
}

func (r *TournamentRepository) ListTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	var out []tournament.Tournament
	err := r.breaker.Execute(func() error {
		var err error
		out, err = r.next.ListTournaments(ctx)
		return err
	}, nil)
	return out, mapOpen(err)
}

func (r *TournamentRepository) GetTournament(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	var (
		out    tournament.Tournament
		exists bool
	)
	err := r.breaker.Execute(func() error {
		var err error
		out, exists, err = r.next.GetTournament(ctx, tournamentID)
		return err
	}, nil)
	return out, exists, mapOpen(err)
}

func (r *TournamentRepository) UpdateTournament(ctx context.Context, tournamentID string, patch tournament.Patch) (tournament.Tournament, error) {
	var out tournament.Tournament
	err := r.breaker.Execute(func() error {
		var err error
		out, err = r.next.UpdateTournament(ctx, tournamentID, patch)
		return err
	}, nil)
	return out, mapOpen(err)
}

func mapOpen(err error) error {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return fmt.Errorf("%w: tournament store: %v", usecase.ErrDependencyUnavailable, err)
	}
	return err
}
