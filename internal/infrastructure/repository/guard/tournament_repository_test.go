package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
	tournamentmock "github.com/riskibarqy/fantasy-cricket/internal/mocks/domain/tournament"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
)

func TestTournamentRepository_OpensAfterFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbErr := errors.New("dial tcp: connection refused")
	next := tournamentmock.NewRepository(t)
	next.On("GetTournament", mock.Anything, "cup").Return(tournament.Tournament{}, false, dbErr).Twice()

	repo := NewTournamentRepository(next, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 2; i++ {
		if _, _, err := repo.GetTournament(ctx, "cup"); !errors.Is(err, dbErr) {
			t.Fatalf("attempt %d: expected db error, got %v", i, err)
		}
	}

	_, err := repo.UpdateTournament(ctx, "cup", tournament.Patch{})
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable once open, got %v", err)
	}
}

func TestTournamentRepository_PassesThroughResults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := tournamentmock.NewRepository(t)
	next.On("ListTournaments", mock.Anything).Return([]tournament.Tournament{{ID: "cup"}}, nil).Once()
	next.On("GetTournament", mock.Anything, "ghost").Return(tournament.Tournament{}, false, nil).Once()

	repo := NewTournamentRepository(next, resilience.DefaultCircuitBreakerConfig())
	items, err := repo.ListTournaments(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("unexpected list result: %+v err=%v", items, err)
	}
	if _, exists, err := repo.GetTournament(ctx, "ghost"); err != nil || exists {
		t.Fatalf("expected clean miss, exists=%v err=%v", exists, err)
	}
}

func TestNewTournamentRepository_DisabledReturnsNext(t *testing.T) {
	t.Parallel()

	next := tournamentmock.NewRepository(t)
	if got := NewTournamentRepository(next, resilience.CircuitBreakerConfig{}); got != tournament.Repository(next) {
		t.Fatalf("expected the undecorated repository when disabled")
	}
}
