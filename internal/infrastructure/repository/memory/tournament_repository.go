package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
)

type TournamentRepository struct {
	mu     sync.RWMutex
	items  map[string]tournament.Tournament
	orders []string
	now    func() time.Time
}

func NewTournamentRepository(items []tournament.Tournament) *TournamentRepository {
	byID := make(map[string]tournament.Tournament, len(items))
	orders := make([]string, 0, len(items))

	for _, t := range items {
		if _, exists := byID[t.ID]; !exists {
			orders = append(orders, t.ID)
		}
		byID[t.ID] = t.Clone()
	}

	return &TournamentRepository{
		items:  byID,
		orders: orders,
		now:    time.Now,
	}
}

func (r *TournamentRepository) ListTournaments(_ context.Context) ([]tournament.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tournament.Tournament, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id].Clone())
	}

	return out, nil
}

func (r *TournamentRepository) GetTournament(_ context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[tournamentID]
	if !ok {
		return tournament.Tournament{}, false, nil
	}

	return t.Clone(), true, nil
}

func (r *TournamentRepository) UpdateTournament(_ context.Context, tournamentID string, patch tournament.Patch) (tournament.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[tournamentID]
	if !ok {
		return tournament.Tournament{}, fmt.Errorf("tournament not found: %s", tournamentID)
	}

	next := patch.Apply(current)
	next.UpdatedAt = r.now().UTC()
	r.items[tournamentID] = next

	return next.Clone(), nil
}
