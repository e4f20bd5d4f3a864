package match

import (
	"fmt"
	"time"
)

// ApplyBall is the single-delivery transition. It never mutates m; the
// returned match carries the updated counters and the new commentary.
//
// Terminal checks run once per delivery, after the ball/over advance: a
// completed chase wins first, then the innings ends if the batting side is all
// out or the last legal over has been bowled. Wides and no-balls skip the
// advance entirely.
func ApplyBall(m Match, o Outcome, c Commentator, now time.Time) (Match, error) {
	switch m.Status {
	case StatusLive:
	case StatusCompleted:
		return Match{}, ErrMatchCompleted
	default:
		return Match{}, fmt.Errorf("%w: status=%s", ErrMatchNotLive, m.Status)
	}
	if !o.Valid() {
		return Match{}, fmt.Errorf("%w: %q", ErrUnknownOutcome, o)
	}
	if m.BattingTeamID == m.BowlingTeamID || m.scoreboard(m.BattingTeamID) == nil || m.scoreboard(m.BowlingTeamID) == nil {
		return Match{}, fmt.Errorf("%w: batting=%q bowling=%q", ErrInvalidTeams, m.BattingTeamID, m.BowlingTeamID)
	}

	next := m.Clone()
	next.LastUpdated = now
	next.deliver(o, c, now)
	return next, nil
}

// SimulateToCompletion bowls deliveries from src until the match completes.
func SimulateToCompletion(m Match, src OutcomeSource, c Commentator, clock func() time.Time) (Match, error) {
	if clock == nil {
		clock = time.Now
	}
	limit := 2 * m.Overs * BallsPerOver * 10
	current := m
	for i := 0; i < limit && !current.IsCompleted(); i++ {
		next, err := ApplyBall(current, src.Next(), c, clock())
		if err != nil {
			return Match{}, err
		}
		current = next
	}
	if !current.IsCompleted() {
		return Match{}, fmt.Errorf("%w: match=%s after %d deliveries", ErrSimulationStalled, m.ID, limit)
	}
	return current, nil
}

func (m *Match) deliver(o Outcome, c Commentator, now time.Time) {
	bat := m.scoreboard(m.BattingTeamID)
	bowl := m.scoreboard(m.BowlingTeamID)
	label := m.ballLabel()
	category := categoryForOutcome(o)

	if runs, ok := o.Runs(); ok {
		bat.Score += runs
		if card := ensureBatter(bat, m.Crease.StrikerID); card != nil {
			card.Runs += runs
			card.Balls++
			switch runs {
			case 4:
				card.Fours++
			case 6:
				card.Sixes++
			}
		}
		if card := ensureBowler(bowl, m.Crease.BowlerID); card != nil {
			card.RunsConceded += runs
		}
		m.comment(category, label+" "+c.Commentary(category, runs), now)
		if runs%2 == 1 {
			m.swapStrike()
		}
	} else {
		switch o {
		case OutcomeWicket:
			bat.Wickets++
			if card := ensureBatter(bat, m.Crease.StrikerID); card != nil {
				card.Balls++
				card.IsOut = true
			}
			if card := ensureBowler(bowl, m.Crease.BowlerID); card != nil {
				card.Wickets++
			}
			m.comment(category, fmt.Sprintf("%s %s %s %d/%d",
				label, c.Commentary(category, 0), m.teamName(m.BattingTeamID), bat.Score, bat.Wickets), now)
			m.nextBatter()
		case OutcomeWide, OutcomeNoBall:
			bat.Score++
			bat.Extras++
			if card := ensureBowler(bowl, m.Crease.BowlerID); card != nil {
				card.RunsConceded++
			}
			m.comment(category, label+" "+c.Commentary(category, 1), now)
			// Not a legal delivery: the ball is bowled again.
			if m.chaseComplete() {
				m.completeChase(c, now)
			}
			return
		case OutcomeLegBye, OutcomeBye:
			bat.Score++
			bat.Extras++
			if card := ensureBatter(bat, m.Crease.StrikerID); card != nil {
				card.Balls++
			}
			m.comment(category, label+" "+c.Commentary(category, 1), now)
			m.swapStrike()
		}
	}

	m.advanceBall(now)

	switch {
	case m.chaseComplete():
		m.completeChase(c, now)
	case bat.Wickets >= MaxWickets || m.CurrentOver >= m.Overs:
		m.endInnings(c, now)
	}
}

func (m *Match) advanceBall(now time.Time) {
	bat := m.scoreboard(m.BattingTeamID)
	bat.Balls++
	bat.Overs = OversNotation(bat.Balls)
	if card := ensureBowler(m.scoreboard(m.BowlingTeamID), m.Crease.BowlerID); card != nil {
		card.Balls++
		card.Overs = OversNotation(card.Balls)
	}

	m.CurrentBall++
	if m.CurrentBall < BallsPerOver {
		return
	}

	m.CurrentBall = 0
	m.CurrentOver++
	m.comment(CategoryOverEnd, m.overSummary(), now)
	m.swapStrike()
	if m.CurrentOver < m.Overs {
		m.Crease.BowlerID = m.bowlerForOver(m.CurrentOver)
		ensureBowler(m.scoreboard(m.BowlingTeamID), m.Crease.BowlerID)
	}
}

func (m *Match) swapStrike() {
	m.Crease.StrikerID, m.Crease.NonStrikerID = m.Crease.NonStrikerID, m.Crease.StrikerID
}

func (m *Match) nextBatter() {
	m.Crease.StrikerID = ""
	team, ok := m.TeamByID(m.BattingTeamID)
	if !ok || m.Crease.NextBatter >= len(team.PlayerIDs) {
		return
	}
	m.Crease.StrikerID = team.PlayerIDs[m.Crease.NextBatter]
	m.Crease.NextBatter++
	ensureBatter(m.scoreboard(m.BattingTeamID), m.Crease.StrikerID)
}

func (m *Match) chaseComplete() bool {
	if m.CurrentInnings != 2 {
		return false
	}
	return m.scoreboard(m.BattingTeamID).Score > m.scoreboard(m.BowlingTeamID).Score
}

// ballLabel renders the delivery about to be recorded, e.g. "3.4".
func (m *Match) ballLabel() string {
	return fmt.Sprintf("%d.%d", m.CurrentOver, m.CurrentBall+1)
}

func (m *Match) overSummary() string {
	bat := m.scoreboard(m.BattingTeamID)
	runRate := 0.0
	if bat.Balls > 0 {
		runRate = float64(bat.Score) / (float64(bat.Balls) / BallsPerOver)
	}
	summary := fmt.Sprintf("End of over %d: %s %d/%d (RR %.2f)",
		m.CurrentOver, m.teamName(m.BattingTeamID), bat.Score, bat.Wickets, runRate)
	if m.CurrentInnings == 2 {
		need := m.scoreboard(m.BowlingTeamID).Score + 1 - bat.Score
		left := m.Overs*BallsPerOver - bat.Balls
		if need > 0 && left > 0 {
			summary += fmt.Sprintf(", need %d off %d balls", need, left)
		}
	}
	return summary
}
