package commentary

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
)

// lines holds the variants per category. A %d verb receives the value passed
// by the ball processor (runs for run outcomes, target for target lines).
var lines = map[match.Category][]string{
	match.CategoryToss: {
		"The captains shake hands.",
		"A big call at the toss.",
		"Conditions played a part in that decision.",
	},
	match.CategoryStart: {
		"Players are out in the middle.",
		"The umpires signal play.",
		"Here we go!",
	},
	match.CategoryDot: {
		"Dot ball, beaten outside off.",
		"Defended solidly back to the bowler.",
		"No run, straight to the fielder.",
		"Left alone outside off stump.",
	},
	match.CategoryRuns: {
		"Pushed into the gap for %d.",
		"Worked off the pads, they take %d.",
		"Good running between the wickets, %d run(s).",
	},
	match.CategoryFour: {
		"FOUR! Driven through the covers.",
		"FOUR! Pulled hard to the boundary.",
		"FOUR! Edged, and it races away to third man.",
	},
	match.CategorySix: {
		"SIX! That's gone all the way.",
		"SIX! Launched over long-on.",
		"SIX! Into the stands.",
	},
	match.CategoryWicket: {
		"OUT! Clean bowled.",
		"OUT! Caught at midwicket.",
		"OUT! Trapped in front, given lbw.",
		"OUT! Run out by a direct hit.",
	},
	match.CategoryWide: {
		"Wide, down the leg side.",
		"Wide, too far outside off.",
	},
	match.CategoryNoBall: {
		"No ball, overstepped.",
		"No ball, above waist height.",
	},
	match.CategoryLegBye: {
		"Leg bye, off the pad.",
		"Deflected off the thigh pad for a leg bye.",
	},
	match.CategoryBye: {
		"Bye, past the keeper.",
		"Keeper misses it, they scamper a bye.",
	},
	match.CategoryOverEnd: {
		"That's the end of the over.",
	},
	match.CategoryInningsEnd: {
		"That brings the innings to a close.",
	},
	match.CategoryTarget: {
		"The chase for %d is on.",
		"%d to win. Game on.",
	},
	match.CategoryResult: {
		"What a game of cricket!",
		"A fine performance.",
		"The crowd rises.",
	},
}

var _ match.Commentator = (*Generator)(nil)

// Generator picks a random line for each commentary category. It is safe for
// concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *Generator) Commentary(category match.Category, value int) string {
	variants := lines[category]
	if len(variants) == 0 {
		return ""
	}

	g.mu.Lock()
	line := variants[g.rng.Intn(len(variants))]
	g.mu.Unlock()

	if strings.Contains(line, "%d") {
		return fmt.Sprintf(line, value)
	}
	return line
}

// Categories returns the categories that have at least one line.
func Categories() []match.Category {
	out := make([]match.Category, 0, len(lines))
	for category := range lines {
		out = append(out, category)
	}
	return out
}
