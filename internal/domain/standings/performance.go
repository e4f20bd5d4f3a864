package standings

import (
	"sort"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
)

const (
	leaderboardSize       = 10
	minEconomyBalls       = 4 * match.BallsPerOver
	minStrikeRateRuns     = 50
	strikeRateScaleFactor = 100
)

// PerformanceStat is one player's tournament figures.
type PerformanceStat struct {
	PlayerID     string  `json:"playerId"`
	PlayerName   string  `json:"playerName"`
	TeamID       string  `json:"teamId"`
	Innings      int     `json:"innings"`
	Runs         int     `json:"runs"`
	Balls        int     `json:"balls"`
	Fours        int     `json:"fours"`
	Sixes        int     `json:"sixes"`
	StrikeRate   float64 `json:"strikeRate"`
	Wickets      int     `json:"wickets"`
	BallsBowled  int     `json:"ballsBowled"`
	Overs        float64 `json:"overs"`
	RunsConceded int     `json:"runsConceded"`
	Economy      float64 `json:"economy"`
}

// Leaderboards are the four top-10 views over the player stats.
type Leaderboards struct {
	MostRuns          []PerformanceStat `json:"mostRuns"`
	MostWickets       []PerformanceStat `json:"mostWickets"`
	BestEconomy       []PerformanceStat `json:"bestEconomy"`
	HighestStrikeRate []PerformanceStat `json:"highestStrikeRate"`
}

// GeneratePerformanceStats folds the scorecards of every completed match into
// per-player figures and derives the leaderboards. Cards for players missing
// from the roster still count; they are attributed to the scorecard's team.
func GeneratePerformanceStats(teams []tournament.Team, players []tournament.Player, matches []match.Match) (Leaderboards, []SkippedMatch) {
	teamOf := make(map[string]string)
	for _, team := range teams {
		for _, playerID := range team.PlayerIDs {
			teamOf[playerID] = team.ID
		}
	}

	stats := make(map[string]*PerformanceStat, len(players))
	for _, p := range players {
		teamID := p.TeamID
		if teamID == "" {
			teamID = teamOf[p.ID]
		}
		stats[p.ID] = &PerformanceStat{PlayerID: p.ID, PlayerName: p.Name, TeamID: teamID}
	}
	row := func(playerID, teamID string) *PerformanceStat {
		s, ok := stats[playerID]
		if !ok {
			s = &PerformanceStat{PlayerID: playerID, PlayerName: playerID, TeamID: teamID}
			stats[playerID] = s
		}
		return s
	}

	var skipped []SkippedMatch
	for _, m := range matches {
		if m.Status != match.StatusCompleted {
			skipped = append(skipped, SkippedMatch{MatchID: m.ID, Reason: "match is not completed"})
			continue
		}
		for _, board := range []match.Scoreboard{m.Team1Score, m.Team2Score} {
			for _, card := range board.Batting {
				if card.PlayerID == "" || card.Runs < 0 || card.Balls < 0 {
					continue
				}
				s := row(card.PlayerID, board.TeamID)
				s.Innings++
				s.Runs += card.Runs
				s.Balls += card.Balls
				s.Fours += card.Fours
				s.Sixes += card.Sixes
			}
			for _, card := range board.Bowling {
				if card.PlayerID == "" || card.Balls < 0 || card.RunsConceded < 0 {
					continue
				}
				s := row(card.PlayerID, board.TeamID)
				s.Wickets += card.Wickets
				s.BallsBowled += card.Balls
				s.RunsConceded += card.RunsConceded
			}
		}
	}

	all := make([]PerformanceStat, 0, len(stats))
	for _, s := range stats {
		if s.Balls > 0 {
			s.StrikeRate = round(float64(s.Runs)/float64(s.Balls)*strikeRateScaleFactor, ratioPrecision)
		}
		if s.BallsBowled > 0 {
			s.Economy = round(float64(s.RunsConceded)/(float64(s.BallsBowled)/ballsPerOver), ratioPrecision)
		}
		s.Overs = match.OversNotation(s.BallsBowled)
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PlayerID < all[j].PlayerID })

	return Leaderboards{
		MostRuns: top(all, func(s PerformanceStat) bool { return s.Runs > 0 }, func(a, b PerformanceStat) bool {
			if a.Runs != b.Runs {
				return a.Runs > b.Runs
			}
			return a.Balls < b.Balls
		}),
		MostWickets: top(all, func(s PerformanceStat) bool { return s.Wickets > 0 }, func(a, b PerformanceStat) bool {
			if a.Wickets != b.Wickets {
				return a.Wickets > b.Wickets
			}
			return a.Economy < b.Economy
		}),
		BestEconomy: top(all, func(s PerformanceStat) bool { return s.BallsBowled >= minEconomyBalls }, func(a, b PerformanceStat) bool {
			if a.Economy != b.Economy {
				return a.Economy < b.Economy
			}
			return a.Wickets > b.Wickets
		}),
		HighestStrikeRate: top(all, func(s PerformanceStat) bool { return s.Runs >= minStrikeRateRuns }, func(a, b PerformanceStat) bool {
			if a.StrikeRate != b.StrikeRate {
				return a.StrikeRate > b.StrikeRate
			}
			return a.Runs > b.Runs
		}),
	}, skipped
}

// top filters, orders and truncates; all is pre-sorted by player id so ties
// stay stable.
func top(all []PerformanceStat, keep func(PerformanceStat) bool, less func(a, b PerformanceStat) bool) []PerformanceStat {
	out := make([]PerformanceStat, 0, leaderboardSize)
	for _, s := range all {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > leaderboardSize {
		out = out[:leaderboardSize]
	}
	return out
}
