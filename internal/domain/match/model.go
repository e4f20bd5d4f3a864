package match

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
)

type TossDecision string

const (
	TossBat  TossDecision = "bat"
	TossBowl TossDecision = "bowl"
)

const (
	DefaultOvers = 20
	MaxOvers     = 50
	BallsPerOver = 6
	MaxWickets   = 10
)

var (
	ErrMatchCompleted    = errors.New("match already completed")
	ErrMatchNotLive      = errors.New("match is not live")
	ErrMatchNotScheduled = errors.New("match is not scheduled")
	ErrUnknownOutcome    = errors.New("unknown ball outcome")
	ErrInvalidOvers      = errors.New("invalid overs")
	ErrInvalidTeams      = errors.New("invalid teams")
	ErrSimulationStalled = errors.New("simulation did not complete")
)

// TeamRef is the team snapshot a match is created with.
type TeamRef struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Color     string   `json:"color,omitempty"`
	PlayerIDs []string `json:"playerIds"`
}

// Scoreboard is one team's running figures plus its scorecards. Batting holds
// the team's own batters; Bowling holds its bowlers while fielding.
type Scoreboard struct {
	TeamID  string        `json:"teamId"`
	Score   int           `json:"score"`
	Wickets int           `json:"wickets"`
	Extras  int           `json:"extras"`
	Balls   int           `json:"balls"`
	Overs   float64       `json:"overs"`
	Batting []BattingCard `json:"batting"`
	Bowling []BowlingCard `json:"bowling"`
}

type BattingCard struct {
	PlayerID string `json:"playerId"`
	Runs     int    `json:"runs"`
	Balls    int    `json:"balls"`
	Fours    int    `json:"fours"`
	Sixes    int    `json:"sixes"`
	IsOut    bool   `json:"isOut"`
}

type BowlingCard struct {
	PlayerID     string  `json:"playerId"`
	Balls        int     `json:"balls"`
	Overs        float64 `json:"overs"`
	RunsConceded int     `json:"runsConceded"`
	Wickets      int     `json:"wickets"`
}

// Crease tracks who is batting and bowling in the current innings.
type Crease struct {
	StrikerID    string `json:"strikerId,omitempty"`
	NonStrikerID string `json:"nonStrikerId,omitempty"`
	BowlerID     string `json:"bowlerId,omitempty"`
	NextBatter   int    `json:"nextBatter"`
}

type CommentaryEntry struct {
	Innings   int       `json:"innings"`
	Over      int       `json:"over"`
	Ball      int       `json:"ball"`
	Category  Category  `json:"category"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Match is one fixture between two teams.
type Match struct {
	ID             string            `json:"id"`
	TournamentID   string            `json:"tournamentId"`
	MatchType      string            `json:"matchType"`
	Team1          TeamRef           `json:"team1"`
	Team2          TeamRef           `json:"team2"`
	Overs          int               `json:"overs"`
	Venue          string            `json:"venue"`
	ScheduledAt    time.Time         `json:"scheduledAt"`
	Status         Status            `json:"status"`
	CurrentInnings int               `json:"currentInnings"`
	BattingTeamID  string            `json:"battingTeamId,omitempty"`
	BowlingTeamID  string            `json:"bowlingTeamId,omitempty"`
	CurrentOver    int               `json:"currentOver"`
	CurrentBall    int               `json:"currentBall"`
	Team1Score     Scoreboard        `json:"team1Score"`
	Team2Score     Scoreboard        `json:"team2Score"`
	Crease         Crease            `json:"crease"`
	Target         int               `json:"target,omitempty"`
	TossWinnerID   string            `json:"tossWinnerId,omitempty"`
	TossDecision   TossDecision      `json:"tossDecision,omitempty"`
	Commentary     []CommentaryEntry `json:"commentary"`
	WinnerID       string            `json:"winnerId,omitempty"`
	IsTied         bool              `json:"isTied"`
	MarginRuns     int               `json:"marginRuns,omitempty"`
	MarginWickets  int               `json:"marginWickets,omitempty"`
	Result         string            `json:"result,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	LastUpdated    time.Time         `json:"lastUpdated"`
}

// NewInput carries the immutable fields of a fixture.
type NewInput struct {
	ID           string
	TournamentID string
	MatchType    string
	Team1        TeamRef
	Team2        TeamRef
	Overs        int
	Venue        string
	ScheduledAt  time.Time
}

// New builds a scheduled match with zeroed scoreboards.
func New(input NewInput, now time.Time) (Match, error) {
	if strings.TrimSpace(input.ID) == "" {
		return Match{}, fmt.Errorf("match id is required")
	}
	if input.Team1.ID == "" || input.Team2.ID == "" || input.Team1.ID == input.Team2.ID {
		return Match{}, fmt.Errorf("%w: team1=%q team2=%q", ErrInvalidTeams, input.Team1.ID, input.Team2.ID)
	}
	if input.Overs < 1 || input.Overs > MaxOvers {
		return Match{}, fmt.Errorf("%w: %d", ErrInvalidOvers, input.Overs)
	}

	m := Match{
		ID:           input.ID,
		TournamentID: input.TournamentID,
		MatchType:    input.MatchType,
		Team1:        cloneTeamRef(input.Team1),
		Team2:        cloneTeamRef(input.Team2),
		Overs:        input.Overs,
		Venue:        input.Venue,
		ScheduledAt:  input.ScheduledAt,
		Status:       StatusScheduled,
		Team1Score:   Scoreboard{TeamID: input.Team1.ID},
		Team2Score:   Scoreboard{TeamID: input.Team2.ID},
		Commentary:   []CommentaryEntry{},
		CreatedAt:    now,
		LastUpdated:  now,
	}
	return m, nil
}

// OversForType resolves the per-innings overs for a match type label.
func OversForType(matchType string, fallback int) int {
	switch strings.ToUpper(strings.TrimSpace(matchType)) {
	case "T10":
		return 10
	case "T20":
		return 20
	case "ODI":
		return 50
	}
	if fallback < 1 || fallback > MaxOvers {
		return DefaultOvers
	}
	return fallback
}

func (m Match) IsCompleted() bool {
	return m.Status == StatusCompleted
}

// ScoreFor returns the scoreboard of the given team.
func (m Match) ScoreFor(teamID string) (Scoreboard, bool) {
	switch teamID {
	case m.Team1.ID:
		return m.Team1Score, true
	case m.Team2.ID:
		return m.Team2Score, true
	default:
		return Scoreboard{}, false
	}
}

func (m Match) TeamByID(teamID string) (TeamRef, bool) {
	switch teamID {
	case m.Team1.ID:
		return m.Team1, true
	case m.Team2.ID:
		return m.Team2, true
	default:
		return TeamRef{}, false
	}
}

func (m Match) OpponentOf(teamID string) string {
	if teamID == m.Team1.ID {
		return m.Team2.ID
	}
	return m.Team1.ID
}

// Clone returns a deep copy; mutating the copy never affects m.
func (m Match) Clone() Match {
	out := m
	out.Team1 = cloneTeamRef(m.Team1)
	out.Team2 = cloneTeamRef(m.Team2)
	out.Team1Score = cloneScoreboard(m.Team1Score)
	out.Team2Score = cloneScoreboard(m.Team2Score)
	out.Commentary = append([]CommentaryEntry(nil), m.Commentary...)
	return out
}

func (m *Match) scoreboard(teamID string) *Scoreboard {
	switch teamID {
	case m.Team1.ID:
		return &m.Team1Score
	case m.Team2.ID:
		return &m.Team2Score
	default:
		return nil
	}
}

func (m *Match) teamName(teamID string) string {
	if team, ok := m.TeamByID(teamID); ok && team.Name != "" {
		return team.Name
	}
	return teamID
}

func cloneTeamRef(t TeamRef) TeamRef {
	t.PlayerIDs = append([]string(nil), t.PlayerIDs...)
	return t
}

func cloneScoreboard(s Scoreboard) Scoreboard {
	s.Batting = append([]BattingCard(nil), s.Batting...)
	s.Bowling = append([]BowlingCard(nil), s.Bowling...)
	return s
}

// OversNotation renders legal balls as cricket overs, e.g. 23 balls -> 3.5.
func OversNotation(balls int) float64 {
	if balls <= 0 {
		return 0
	}
	return float64(balls/BallsPerOver) + float64(balls%BallsPerOver)/10
}
