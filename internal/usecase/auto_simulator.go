package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

// SimulationSpeeds are the accepted cadence multipliers.
var SimulationSpeeds = []float64{0.5, 1, 2, 5}

// Scheduler runs fn once after d and returns a function that cancels it.
type Scheduler func(d time.Duration, fn func()) (cancel func() bool)

func timerScheduler(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

type ballSimulator interface {
	SimulateBall(ctx context.Context) (match.Match, error)
	LiveMatch() (match.Match, bool)
}

type AutoState struct {
	Enabled      bool          `json:"enabled"`
	Paused       bool          `json:"paused"`
	Speed        float64       `json:"speed"`
	Interval     time.Duration `json:"intervalNs"`
	HasLiveMatch bool          `json:"hasLiveMatch"`
	Running      bool          `json:"running"`
}

// AutoSimulator drives SimulateBall on a fixed cadence. It owns at most one
// pending tick; every change to the run condition cancels it and schedules a
// fresh one only if auto mode is on, not paused and a match is live.
type AutoSimulator struct {
	matches      ballSimulator
	baseInterval time.Duration
	schedule     Scheduler
	logger       *logging.Logger

	mu         sync.Mutex
	enabled    bool
	paused     bool
	speed      float64
	hasLive    bool
	generation uint64
	cancel     func() bool
}

func NewAutoSimulator(matches ballSimulator, baseInterval time.Duration, schedule Scheduler, logger *logging.Logger) *AutoSimulator {
	if baseInterval <= 0 {
		baseInterval = time.Second
	}
	if schedule == nil {
		schedule = timerScheduler
	}
	if logger == nil {
		logger = logging.Default()
	}
	_, hasLive := matches.LiveMatch()

	return &AutoSimulator{
		matches:      matches,
		baseInterval: baseInterval,
		schedule:     schedule,
		logger:       logger,
		speed:        1,
		hasLive:      hasLive,
	}
}

func (a *AutoSimulator) Toggle() AutoState {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.enabled = !a.enabled
	if a.enabled {
		_, a.hasLive = a.matches.LiveMatch()
	}
	a.reschedule()
	a.logger.Info("auto simulation toggled", "enabled", a.enabled, "speed", a.speed)
	return a.stateLocked()
}

func (a *AutoSimulator) TogglePause() AutoState {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.paused = !a.paused
	a.reschedule()
	return a.stateLocked()
}

func (a *AutoSimulator) SetSpeed(multiplier float64) (AutoState, error) {
	if !validSpeed(multiplier) {
		return AutoState{}, fmt.Errorf("%w: speed must be one of %v", ErrInvalidInput, SimulationSpeeds)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.speed = multiplier
	a.reschedule()
	return a.stateLocked(), nil
}

func (a *AutoSimulator) State() AutoState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

// HandleMatchEvent tracks live-match presence; subscribe it to MatchService.
func (a *AutoSimulator) HandleMatchEvent(evt MatchEvent) {
	var hasLive bool
	switch evt.Type {
	case MatchEventStarted:
		hasLive = true
	case MatchEventCompleted:
		hasLive = false
	default:
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.hasLive == hasLive {
		return
	}
	a.hasLive = hasLive
	a.reschedule()
	if !hasLive && a.enabled {
		a.logger.Info("auto simulation idle: no live match", "match_id", evt.Match.ID)
	}
}

// Stop cancels any pending tick and disables auto mode.
func (a *AutoSimulator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.enabled = false
	a.reschedule()
}

// reschedule must be called with mu held.
func (a *AutoSimulator) reschedule() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.generation++
	if !a.runningLocked() {
		return
	}
	gen := a.generation
	a.cancel = a.schedule(a.intervalLocked(), func() { a.tick(gen) })
}

func (a *AutoSimulator) tick(gen uint64) {
	a.mu.Lock()
	if gen != a.generation || !a.runningLocked() {
		a.mu.Unlock()
		return
	}
	a.cancel = nil
	a.mu.Unlock()

	_, err := a.matches.SimulateBall(context.Background())

	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case err == nil, errors.Is(err, ErrBusy):
	case errors.Is(err, ErrIllegalState):
		a.hasLive = false
	default:
		a.logger.Error("auto simulation tick failed", "error", err)
	}
	// A state change during the tick already rescheduled or cancelled.
	if gen != a.generation {
		return
	}
	a.reschedule()
}

func (a *AutoSimulator) runningLocked() bool {
	return a.enabled && !a.paused && a.hasLive
}

func (a *AutoSimulator) intervalLocked() time.Duration {
	return time.Duration(float64(a.baseInterval) / a.speed)
}

func (a *AutoSimulator) stateLocked() AutoState {
	return AutoState{
		Enabled:      a.enabled,
		Paused:       a.paused,
		Speed:        a.speed,
		Interval:     a.intervalLocked(),
		HasLiveMatch: a.hasLive,
		Running:      a.runningLocked(),
	}
}

func validSpeed(v float64) bool {
	for _, speed := range SimulationSpeeds {
		if v == speed {
			return true
		}
	}
	return false
}
