package match

import (
	"fmt"
	"time"
)

// Toss is the result of the pre-match coin flips.
type Toss struct {
	WinnerID string
	Decision TossDecision
}

// ResolveToss flips two independent coins: one for the winner, one for the
// decision.
func ResolveToss(rng RandomSource, m Match) Toss {
	toss := Toss{WinnerID: m.Team1.ID, Decision: TossBat}
	if rng.Intn(2) == 1 {
		toss.WinnerID = m.Team2.ID
	}
	if rng.Intn(2) == 1 {
		toss.Decision = TossBowl
	}
	return toss
}

// Start applies the toss and moves a scheduled match to live.
func Start(m Match, toss Toss, c Commentator, now time.Time) (Match, error) {
	switch m.Status {
	case StatusScheduled:
	case StatusCompleted:
		return Match{}, ErrMatchCompleted
	default:
		return Match{}, fmt.Errorf("%w: status=%s", ErrMatchNotScheduled, m.Status)
	}
	if _, ok := m.TeamByID(toss.WinnerID); !ok {
		return Match{}, fmt.Errorf("%w: toss winner %q is not playing", ErrInvalidTeams, toss.WinnerID)
	}
	if toss.Decision != TossBat && toss.Decision != TossBowl {
		return Match{}, fmt.Errorf("invalid toss decision %q", toss.Decision)
	}

	next := m.Clone()
	next.Status = StatusLive
	next.CurrentInnings = 1
	next.CurrentOver = 0
	next.CurrentBall = 0
	next.TossWinnerID = toss.WinnerID
	next.TossDecision = toss.Decision
	next.BattingTeamID = toss.WinnerID
	if toss.Decision == TossBowl {
		next.BattingTeamID = m.OpponentOf(toss.WinnerID)
	}
	next.BowlingTeamID = m.OpponentOf(next.BattingTeamID)
	next.openInnings()
	next.LastUpdated = now

	next.comment(CategoryToss, fmt.Sprintf("%s won the toss and elected to %s first. %s",
		next.teamName(toss.WinnerID), toss.Decision, c.Commentary(CategoryToss, 0)), now)
	next.comment(CategoryStart, fmt.Sprintf("%s to bat, %d overs a side at %s. %s",
		next.teamName(next.BattingTeamID), next.Overs, next.Venue, c.Commentary(CategoryStart, 0)), now)

	return next, nil
}

// openInnings puts the first two batters of the batting roster at the crease
// and hands the ball to the first bowler.
func (m *Match) openInnings() {
	m.Crease = Crease{NextBatter: 2}
	if team, ok := m.TeamByID(m.BattingTeamID); ok {
		if len(team.PlayerIDs) > 0 {
			m.Crease.StrikerID = team.PlayerIDs[0]
		}
		if len(team.PlayerIDs) > 1 {
			m.Crease.NonStrikerID = team.PlayerIDs[1]
		}
	}
	m.Crease.BowlerID = m.bowlerForOver(0)

	bat := m.scoreboard(m.BattingTeamID)
	ensureBatter(bat, m.Crease.StrikerID)
	ensureBatter(bat, m.Crease.NonStrikerID)
	ensureBowler(m.scoreboard(m.BowlingTeamID), m.Crease.BowlerID)
}

// bowlerForOver rotates the last five players of the bowling roster.
func (m *Match) bowlerForOver(over int) string {
	team, ok := m.TeamByID(m.BowlingTeamID)
	if !ok || len(team.PlayerIDs) == 0 {
		return ""
	}
	pool := team.PlayerIDs
	if len(pool) > 5 {
		pool = pool[len(pool)-5:]
	}
	return pool[over%len(pool)]
}

func ensureBatter(s *Scoreboard, playerID string) *BattingCard {
	if s == nil || playerID == "" {
		return nil
	}
	for i := range s.Batting {
		if s.Batting[i].PlayerID == playerID {
			return &s.Batting[i]
		}
	}
	s.Batting = append(s.Batting, BattingCard{PlayerID: playerID})
	return &s.Batting[len(s.Batting)-1]
}

func ensureBowler(s *Scoreboard, playerID string) *BowlingCard {
	if s == nil || playerID == "" {
		return nil
	}
	for i := range s.Bowling {
		if s.Bowling[i].PlayerID == playerID {
			return &s.Bowling[i]
		}
	}
	s.Bowling = append(s.Bowling, BowlingCard{PlayerID: playerID})
	return &s.Bowling[len(s.Bowling)-1]
}
