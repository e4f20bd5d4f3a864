package match

import "time"

// Category classifies a commentary line.
type Category string

const (
	CategoryToss       Category = "toss"
	CategoryStart      Category = "start"
	CategoryDot        Category = "dot"
	CategoryRuns       Category = "runs"
	CategoryFour       Category = "four"
	CategorySix        Category = "six"
	CategoryWicket     Category = "wicket"
	CategoryWide       Category = "wide"
	CategoryNoBall     Category = "noball"
	CategoryLegBye     Category = "legbye"
	CategoryBye        Category = "bye"
	CategoryOverEnd    Category = "over_end"
	CategoryInningsEnd Category = "innings_end"
	CategoryTarget     Category = "target"
	CategoryResult     Category = "result"
)

// Commentator turns a category (and an optional value such as runs) into a
// human-readable line.
type Commentator interface {
	Commentary(category Category, value int) string
}

func categoryForOutcome(o Outcome) Category {
	switch o {
	case OutcomeDot:
		return CategoryDot
	case OutcomeFour:
		return CategoryFour
	case OutcomeSix:
		return CategorySix
	case OutcomeWicket:
		return CategoryWicket
	case OutcomeWide:
		return CategoryWide
	case OutcomeNoBall:
		return CategoryNoBall
	case OutcomeLegBye:
		return CategoryLegBye
	case OutcomeBye:
		return CategoryBye
	default:
		return CategoryRuns
	}
}

func (m *Match) comment(category Category, text string, now time.Time) {
	m.Commentary = append(m.Commentary, CommentaryEntry{
		Innings:   m.CurrentInnings,
		Over:      m.CurrentOver,
		Ball:      m.CurrentBall,
		Category:  category,
		Text:      text,
		Timestamp: now,
	})
}
