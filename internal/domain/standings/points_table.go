package standings

import (
	"math"
	"sort"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
)

// PointsTableRow is one team's line in the points table.
type PointsTableRow struct {
	TeamID       string  `json:"teamId"`
	TeamName     string  `json:"teamName"`
	Position     int     `json:"position,omitempty"`
	Played       int     `json:"played"`
	Won          int     `json:"won"`
	Lost         int     `json:"lost"`
	Tied         int     `json:"tied"`
	NoResult     int     `json:"noResult"`
	Points       int     `json:"points"`
	NetRunRate   float64 `json:"netRunRate"`
	RunsScored   int     `json:"runsScored"`
	BallsFaced   int     `json:"ballsFaced"`
	RunsConceded int     `json:"runsConceded"`
	BallsBowled  int     `json:"ballsBowled"`
}

// PointsTable is keyed by team id.
type PointsTable map[string]PointsTableRow

// SkippedMatch records a completed-match entry the fold could not use.
type SkippedMatch struct {
	MatchID string `json:"matchId"`
	Reason  string `json:"reason"`
}

const (
	pointsWin      = 2
	pointsShared   = 1
	ballsPerOver   = float64(match.BallsPerOver)
	nrrPrecision   = 1000
	ratioPrecision = 100
)

// GeneratePointsTable folds every completed match into a fresh table. The
// result depends only on its inputs; malformed records are skipped and
// reported instead of failing the whole table.
func GeneratePointsTable(teams []tournament.Team, matches []match.Match) (PointsTable, []SkippedMatch) {
	table := make(PointsTable, len(teams))
	for _, team := range teams {
		table[team.ID] = PointsTableRow{TeamID: team.ID, TeamName: team.Name}
	}

	var skipped []SkippedMatch
	for _, m := range matches {
		if reason := malformedReason(m, table); reason != "" {
			skipped = append(skipped, SkippedMatch{MatchID: m.ID, Reason: reason})
			continue
		}

		home := table[m.Team1.ID]
		away := table[m.Team2.ID]
		home.Played++
		away.Played++

		switch m.WinnerID {
		case m.Team1.ID:
			home.Won++
			home.Points += pointsWin
			away.Lost++
		case m.Team2.ID:
			away.Won++
			away.Points += pointsWin
			home.Lost++
		default:
			// A tie and a no-result both split the points.
			home.Points += pointsShared
			away.Points += pointsShared
			if m.IsTied {
				home.Tied++
				away.Tied++
			} else {
				home.NoResult++
				away.NoResult++
			}
		}

		home.RunsScored += m.Team1Score.Score
		home.BallsFaced += m.Team1Score.Balls
		home.RunsConceded += m.Team2Score.Score
		home.BallsBowled += m.Team2Score.Balls
		away.RunsScored += m.Team2Score.Score
		away.BallsFaced += m.Team2Score.Balls
		away.RunsConceded += m.Team1Score.Score
		away.BallsBowled += m.Team1Score.Balls

		table[m.Team1.ID] = home
		table[m.Team2.ID] = away
	}

	for id, row := range table {
		row.NetRunRate = netRunRate(row)
		table[id] = row
	}
	return table, skipped
}

// SortedPointsTable orders rows by points, net run rate and wins, assigning
// shared positions to rows level on all three.
func SortedPointsTable(table PointsTable) []PointsTableRow {
	rows := make([]PointsTableRow, 0, len(table))
	for _, row := range table {
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].NetRunRate != rows[j].NetRunRate {
			return rows[i].NetRunRate > rows[j].NetRunRate
		}
		if rows[i].Won != rows[j].Won {
			return rows[i].Won > rows[j].Won
		}
		return rows[i].TeamID < rows[j].TeamID
	})

	for idx := range rows {
		if idx > 0 && sameRank(rows[idx-1], rows[idx]) {
			rows[idx].Position = rows[idx-1].Position
			continue
		}
		rows[idx].Position = idx + 1
	}
	return rows
}

func sameRank(a, b PointsTableRow) bool {
	return a.Points == b.Points && a.NetRunRate == b.NetRunRate && a.Won == b.Won
}

func netRunRate(row PointsTableRow) float64 {
	if row.BallsFaced <= 0 || row.BallsBowled <= 0 {
		return 0
	}
	scoring := float64(row.RunsScored) / (float64(row.BallsFaced) / ballsPerOver)
	conceding := float64(row.RunsConceded) / (float64(row.BallsBowled) / ballsPerOver)
	return round(scoring-conceding, nrrPrecision)
}

func malformedReason(m match.Match, table PointsTable) string {
	switch {
	case m.Status != match.StatusCompleted:
		return "match is not completed"
	case m.Team1.ID == "" || m.Team2.ID == "" || m.Team1.ID == m.Team2.ID:
		return "match teams are invalid"
	}
	if _, ok := table[m.Team1.ID]; !ok {
		return "team1 is not part of the tournament"
	}
	if _, ok := table[m.Team2.ID]; !ok {
		return "team2 is not part of the tournament"
	}
	if m.WinnerID != "" && m.WinnerID != m.Team1.ID && m.WinnerID != m.Team2.ID {
		return "winner is not one of the match teams"
	}
	if m.WinnerID != "" && m.IsTied {
		return "match has both a winner and a tie"
	}
	if m.Team1Score.Score < 0 || m.Team2Score.Score < 0 || m.Team1Score.Balls < 0 || m.Team2Score.Balls < 0 {
		return "match has negative figures"
	}
	return ""
}

func round(v float64, precision float64) float64 {
	return math.Round(v*precision) / precision
}
