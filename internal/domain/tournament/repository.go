package tournament

import (
	"context"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
)

// Patch is a shallow replacement: every non-nil field overwrites the stored
// value as a whole.
type Patch struct {
	Name             *string
	Matches          *[]match.Match
	CompletedMatches *[]match.Match
}

// Apply returns t with the patch fields replaced.
func (p Patch) Apply(t Tournament) Tournament {
	out := t.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Matches != nil {
		out.Matches = cloneMatches(*p.Matches)
	}
	if p.CompletedMatches != nil {
		out.CompletedMatches = cloneMatches(*p.CompletedMatches)
	}
	return out
}

// Repository describes tournament persistence needs from use cases.
type Repository interface {
	ListTournaments(ctx context.Context) ([]Tournament, error)
	GetTournament(ctx context.Context, tournamentID string) (Tournament, bool, error)
	UpdateTournament(ctx context.Context, tournamentID string, patch Patch) (Tournament, error)
}
