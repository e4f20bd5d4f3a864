package tournament

import (
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
)

// Tournament groups the teams, players and fixtures of one competition.
type Tournament struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Overs            int           `json:"overs"`
	Teams            []Team        `json:"teams"`
	Players          []Player      `json:"players"`
	Matches          []match.Match `json:"matches"`
	CompletedMatches []match.Match `json:"completedMatches"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

type Team struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Color     string   `json:"color,omitempty"`
	PlayerIDs []string `json:"playerIds"`
}

type PlayerRole string

const (
	RoleBatter       PlayerRole = "batter"
	RoleBowler       PlayerRole = "bowler"
	RoleAllRounder   PlayerRole = "all_rounder"
	RoleWicketKeeper PlayerRole = "wicket_keeper"
)

type Player struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	TeamID string     `json:"teamId"`
	Role   PlayerRole `json:"role,omitempty"`
}

func (t Tournament) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tournament id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("tournament name is required")
	}
	seen := make(map[string]struct{}, len(t.Teams))
	for _, team := range t.Teams {
		if team.ID == "" {
			return fmt.Errorf("team id is required")
		}
		if _, ok := seen[team.ID]; ok {
			return fmt.Errorf("duplicate team id %q", team.ID)
		}
		seen[team.ID] = struct{}{}
	}
	return nil
}

func (t Tournament) TeamByID(teamID string) (Team, bool) {
	for _, team := range t.Teams {
		if team.ID == teamID {
			return team, true
		}
	}
	return Team{}, false
}

// MatchByID looks in the fixture list, which also holds finished matches.
func (t Tournament) MatchByID(matchID string) (match.Match, int, bool) {
	for i, m := range t.Matches {
		if m.ID == matchID {
			return m, i, true
		}
	}
	return match.Match{}, -1, false
}

// TeamRef snapshots a team for a new fixture.
func (t Team) TeamRef() match.TeamRef {
	return match.TeamRef{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.Color,
		PlayerIDs: append([]string(nil), t.PlayerIDs...),
	}
}

// Clone returns a deep copy of the tournament.
func (t Tournament) Clone() Tournament {
	out := t
	out.Teams = make([]Team, len(t.Teams))
	for i, team := range t.Teams {
		team.PlayerIDs = append([]string(nil), team.PlayerIDs...)
		out.Teams[i] = team
	}
	out.Players = append([]Player(nil), t.Players...)
	out.Matches = cloneMatches(t.Matches)
	out.CompletedMatches = cloneMatches(t.CompletedMatches)
	return out
}

func cloneMatches(items []match.Match) []match.Match {
	if items == nil {
		return nil
	}
	out := make([]match.Match, len(items))
	for i, m := range items {
		out[i] = m.Clone()
	}
	return out
}
