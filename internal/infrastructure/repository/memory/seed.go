package memory

import (
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
)

const TournamentIDPremierCup = "premier-cup-2026"

type seedTeam struct {
	id    string
	name  string
	short string
	color string
	venue string
}

var seedTeams = []seedTeam{
	{id: "mum", name: "Mumbai Mariners", short: "MUM", color: "#004BA0", venue: "Wankhede Stadium"},
	{id: "che", name: "Chennai Chargers", short: "CHE", color: "#F9CD05", venue: "M. A. Chidambaram Stadium"},
	{id: "kol", name: "Kolkata Knights", short: "KOL", color: "#3A225D", venue: "Eden Gardens"},
	{id: "ben", name: "Bengaluru Blazers", short: "BEN", color: "#EC1C24", venue: "M. Chinnaswamy Stadium"},
}

// seedRoles orders a squad the way it bats: top order first, bowlers last so
// the bowling rotation picks the final five.
var seedRoles = []tournament.PlayerRole{
	tournament.RoleBatter,
	tournament.RoleBatter,
	tournament.RoleBatter,
	tournament.RoleBatter,
	tournament.RoleWicketKeeper,
	tournament.RoleAllRounder,
	tournament.RoleAllRounder,
	tournament.RoleBowler,
	tournament.RoleBowler,
	tournament.RoleBowler,
	tournament.RoleBowler,
}

// SeedTournaments returns one four-team tournament with a full round-robin
// schedule.
func SeedTournaments(now time.Time) []tournament.Tournament {
	t := tournament.Tournament{
		ID:        TournamentIDPremierCup,
		Name:      "Premier Cup 2026",
		Overs:     match.DefaultOvers,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, st := range seedTeams {
		team := tournament.Team{ID: st.id, Name: st.name, Color: st.color}
		for i, role := range seedRoles {
			playerID := fmt.Sprintf("%s-%02d", st.id, i+1)
			team.PlayerIDs = append(team.PlayerIDs, playerID)
			t.Players = append(t.Players, tournament.Player{
				ID:     playerID,
				Name:   fmt.Sprintf("%s %s %d", st.short, roleLabel(role), i+1),
				TeamID: st.id,
				Role:   role,
			})
		}
		t.Teams = append(t.Teams, team)
	}

	day := 0
	for i := 0; i < len(seedTeams); i++ {
		for j := i + 1; j < len(seedTeams); j++ {
			home, away := t.Teams[i], t.Teams[j]
			m, err := match.New(match.NewInput{
				ID:           fmt.Sprintf("%s-%s-vs-%s", t.ID, home.ID, away.ID),
				TournamentID: t.ID,
				MatchType:    "T20",
				Team1:        home.TeamRef(),
				Team2:        away.TeamRef(),
				Overs:        t.Overs,
				Venue:        seedTeams[i].venue,
				ScheduledAt:  now.Add(time.Duration(day) * 24 * time.Hour),
			}, now)
			if err != nil {
				panic(fmt.Sprintf("invalid seed fixture: %v", err))
			}
			t.Matches = append(t.Matches, m)
			day++
		}
	}

	return []tournament.Tournament{t}
}

func roleLabel(role tournament.PlayerRole) string {
	switch role {
	case tournament.RoleWicketKeeper:
		return "Keeper"
	case tournament.RoleAllRounder:
		return "Allrounder"
	case tournament.RoleBowler:
		return "Bowler"
	default:
		return "Batter"
	}
}
