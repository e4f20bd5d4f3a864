package httpapi

import (
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
)

type createMatchRequest struct {
	Team1ID     string     `json:"team1Id" validate:"required,max=64"`
	Team2ID     string     `json:"team2Id" validate:"required,max=64,nefield=Team1ID"`
	MatchType   string     `json:"matchType" validate:"omitempty,max=40"`
	Venue       string     `json:"venue" validate:"omitempty,max=120"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	Overs       int        `json:"overs" validate:"omitempty,min=1,max=50"`
}

type setSpeedRequest struct {
	Speed float64 `json:"speed" validate:"required,gt=0"`
}

type tournamentSummaryDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Overs          int    `json:"overs"`
	TeamCount      int    `json:"teamCount"`
	ScheduledCount int    `json:"scheduledCount"`
	CompletedCount int    `json:"completedCount"`
}

type liveDTO struct {
	Live     bool              `json:"live"`
	Match    *match.Match      `json:"match,omitempty"`
	Auto     usecase.AutoState `json:"auto"`
	Schedule []match.Match     `json:"schedule"`
}

func tournamentSummaryToDTO(t tournament.Tournament) tournamentSummaryDTO {
	scheduled := 0
	for _, item := range t.Matches {
		if item.Status == match.StatusScheduled {
			scheduled++
		}
	}
	return tournamentSummaryDTO{
		ID:             t.ID,
		Name:           t.Name,
		Overs:          t.Overs,
		TeamCount:      len(t.Teams),
		ScheduledCount: scheduled,
		CompletedCount: len(t.CompletedMatches),
	}
}

func (r createMatchRequest) toInput(tournamentID string) usecase.CreateMatchInput {
	input := usecase.CreateMatchInput{
		TournamentID: tournamentID,
		Team1ID:      r.Team1ID,
		Team2ID:      r.Team2ID,
		MatchType:    r.MatchType,
		Venue:        r.Venue,
		Overs:        r.Overs,
	}
	if r.ScheduledAt != nil {
		input.ScheduledAt = *r.ScheduledAt
	}
	return input
}
