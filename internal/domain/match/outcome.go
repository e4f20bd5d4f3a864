package match

import "fmt"

// Outcome is one sampled delivery result.
type Outcome string

const (
	OutcomeDot    Outcome = "0"
	OutcomeOne    Outcome = "1"
	OutcomeTwo    Outcome = "2"
	OutcomeThree  Outcome = "3"
	OutcomeFour   Outcome = "4"
	OutcomeSix    Outcome = "6"
	OutcomeWicket Outcome = "W"
	OutcomeWide   Outcome = "WD"
	OutcomeNoBall Outcome = "NB"
	OutcomeLegBye Outcome = "LB"
	OutcomeBye    Outcome = "B"
)

// WeightedOutcome pairs an outcome with its relative weight.
type WeightedOutcome struct {
	Outcome Outcome
	Weight  int
}

// outcomeTable is the fixed delivery distribution. Weights sum to 100.
var outcomeTable = [...]WeightedOutcome{
	{Outcome: OutcomeDot, Weight: 30},
	{Outcome: OutcomeOne, Weight: 25},
	{Outcome: OutcomeTwo, Weight: 10},
	{Outcome: OutcomeThree, Weight: 3},
	{Outcome: OutcomeFour, Weight: 15},
	{Outcome: OutcomeSix, Weight: 5},
	{Outcome: OutcomeWicket, Weight: 7},
	{Outcome: OutcomeWide, Weight: 2},
	{Outcome: OutcomeNoBall, Weight: 1},
	{Outcome: OutcomeLegBye, Weight: 1},
	{Outcome: OutcomeBye, Weight: 1},
}

// OutcomeTable returns a copy of the delivery distribution.
func OutcomeTable() []WeightedOutcome {
	out := make([]WeightedOutcome, len(outcomeTable))
	copy(out, outcomeTable[:])
	return out
}

func ParseOutcome(raw string) (Outcome, error) {
	o := Outcome(raw)
	if !o.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownOutcome, raw)
	}
	return o, nil
}

func (o Outcome) Valid() bool {
	for _, item := range outcomeTable {
		if item.Outcome == o {
			return true
		}
	}
	return false
}

// Runs returns the bat runs for numeric outcomes.
func (o Outcome) Runs() (int, bool) {
	switch o {
	case OutcomeDot:
		return 0, true
	case OutcomeOne:
		return 1, true
	case OutcomeTwo:
		return 2, true
	case OutcomeThree:
		return 3, true
	case OutcomeFour:
		return 4, true
	case OutcomeSix:
		return 6, true
	default:
		return 0, false
	}
}

// IsLegal reports whether the delivery counts toward the six balls of an over.
func (o Outcome) IsLegal() bool {
	return o != OutcomeWide && o != OutcomeNoBall
}

func (o Outcome) IsExtra() bool {
	switch o {
	case OutcomeWide, OutcomeNoBall, OutcomeLegBye, OutcomeBye:
		return true
	default:
		return false
	}
}
