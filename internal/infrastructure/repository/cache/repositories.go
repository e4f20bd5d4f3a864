package cache

import (
	"context"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
	basecache "github.com/riskibarqy/fantasy-cricket/internal/platform/cache"
)

const (
	tournamentListKey    = "tournament:list"
	tournamentByIDPrefix = "tournament:id:"
)

// TournamentRepository is a read-through cache over another repository.
// Entries are cloned on the way in and out so callers never share slices with
// the cache.
type TournamentRepository struct {
	next  tournament.Repository
	cache *basecache.Store
}

func NewTournamentRepository(next tournament.Repository, cache *basecache.Store) *TournamentRepository {
	return &TournamentRepository{next: next, cache: cache}
}

func (r *TournamentRepository) ListTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	v, err := r.cache.GetOrLoad(ctx, tournamentListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.ListTournaments(ctx)
		if err != nil {
			return nil, err
		}
		return cloneTournaments(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]tournament.Tournament)
	return cloneTournaments(items), nil
}

func (r *TournamentRepository) GetTournament(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, tournamentKey(tournamentID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetTournament(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		return cachedTournamentByID{value: item.Clone(), exists: exists}, nil
	})
	if err != nil {
		return tournament.Tournament{}, false, err
	}

	cached, _ := v.(cachedTournamentByID)
	return cached.value.Clone(), cached.exists, nil
}

// UpdateTournament writes through and invalidates both entries. Reads that
// were in flight during the write are discarded by the store, so the next
// read always reflects the stored result.
func (r *TournamentRepository) UpdateTournament(ctx context.Context, tournamentID string, patch tournament.Patch) (tournament.Tournament, error) {
	updated, err := r.next.UpdateTournament(ctx, tournamentID, patch)
	r.cache.Delete(ctx, tournamentKey(tournamentID))
	r.cache.Delete(ctx, tournamentListKey)
	if err != nil {
		return tournament.Tournament{}, err
	}
	return updated, nil
}

type cachedTournamentByID struct {
	value  tournament.Tournament
	exists bool
}

func tournamentKey(tournamentID string) string {
	return tournamentByIDPrefix + tournamentID
}

func cloneTournaments(items []tournament.Tournament) []tournament.Tournament {
	out := make([]tournament.Tournament, 0, len(items))
	for _, item := range items {
		out = append(out, item.Clone())
	}
	return out
}
