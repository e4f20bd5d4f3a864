package match

import (
	"fmt"
	"time"
)

// endInnings closes the current innings. After the first innings the sides
// swap and the chase target is set; after the second the result is decided.
func (m *Match) endInnings(c Commentator, now time.Time) {
	bat := m.scoreboard(m.BattingTeamID)
	m.comment(CategoryInningsEnd, fmt.Sprintf("End of innings %d: %s %d/%d (%.1f overs)",
		m.CurrentInnings, m.teamName(m.BattingTeamID), bat.Score, bat.Wickets, bat.Overs), now)

	if m.CurrentInnings == 1 {
		m.Target = bat.Score + 1
		m.CurrentInnings = 2
		m.BattingTeamID, m.BowlingTeamID = m.BowlingTeamID, m.BattingTeamID
		m.CurrentOver = 0
		m.CurrentBall = 0
		m.openInnings()
		m.comment(CategoryTarget, fmt.Sprintf("%s need %d runs from %d balls. %s",
			m.teamName(m.BattingTeamID), m.Target, m.Overs*BallsPerOver, c.Commentary(CategoryTarget, m.Target)), now)
		return
	}

	first := m.scoreboard(m.BowlingTeamID)
	second := m.scoreboard(m.BattingTeamID)
	switch {
	case second.Score > first.Score:
		m.complete(c, m.BattingTeamID, 0, MaxWickets-second.Wickets, now)
	case first.Score > second.Score:
		m.complete(c, m.BowlingTeamID, first.Score-second.Score, 0, now)
	default:
		m.complete(c, "", 0, 0, now)
	}
}

func (m *Match) completeChase(c Commentator, now time.Time) {
	bat := m.scoreboard(m.BattingTeamID)
	m.complete(c, m.BattingTeamID, 0, MaxWickets-bat.Wickets, now)
}

// complete is the only place a match becomes completed. An empty winnerID
// records a tie.
func (m *Match) complete(c Commentator, winnerID string, marginRuns, marginWickets int, now time.Time) {
	m.Status = StatusCompleted
	m.WinnerID = winnerID
	m.IsTied = winnerID == ""
	m.MarginRuns = marginRuns
	m.MarginWickets = marginWickets
	m.LastUpdated = now

	switch {
	case m.IsTied:
		m.Result = "Match tied"
	case marginRuns > 0:
		m.Result = fmt.Sprintf("%s won by %d %s", m.teamName(winnerID), marginRuns, plural(marginRuns, "run"))
	default:
		m.Result = fmt.Sprintf("%s won by %d %s", m.teamName(winnerID), marginWickets, plural(marginWickets, "wicket"))
	}
	m.comment(CategoryResult, m.Result+". "+c.Commentary(CategoryResult, 0), now)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
