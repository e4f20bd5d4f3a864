package match

// RandomSource is the subset of *rand.Rand the engine needs.
type RandomSource interface {
	Intn(n int) int
}

// OutcomeSource yields the next delivery outcome.
type OutcomeSource interface {
	Next() Outcome
}

// Sampler draws outcomes from the fixed weighted table.
//
// The sampler keeps no state of its own; determinism comes from the injected
// source, so a seeded *rand.Rand replays the same sequence. A Sampler is safe
// for concurrent use only if its source is.
type Sampler struct {
	rng   RandomSource
	total int
}

func NewSampler(rng RandomSource) *Sampler {
	total := 0
	for _, item := range outcomeTable {
		total += item.Weight
	}
	return &Sampler{rng: rng, total: total}
}

func (s *Sampler) Next() Outcome {
	return pick(s.rng.Intn(s.total))
}

// pick maps a roll in [0, total) onto the cumulative weight table.
func pick(roll int) Outcome {
	cumulative := 0
	for _, item := range outcomeTable {
		cumulative += item.Weight
		if roll < cumulative {
			return item.Outcome
		}
	}
	return outcomeTable[len(outcomeTable)-1].Outcome
}
