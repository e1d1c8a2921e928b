package control

import (
	"math"
	"sync"
	"time"

	"github.com/lowc1012/drivetrain-limiter/internal/clock"
	"github.com/lowc1012/drivetrain-limiter/internal/profile"
)

// Inputs is one reading of the operator controls.
type Inputs struct {
	Y        float64 `json:"y"`
	X        float64 `json:"x"`
	Rotation float64 `json:"rotation"`
}

// InputSource is polled once per control cycle.
type InputSource interface {
	Inputs() Inputs
}

// InputsFunc adapts a function to InputSource.
type InputsFunc func() Inputs

func (f InputsFunc) Inputs() Inputs {
	return f()
}

// Teleop holds the latest inputs pushed by a remote operator.
type Teleop struct {
	mu     sync.RWMutex
	inputs Inputs
}

func (t *Teleop) Set(in Inputs) {
	t.mu.Lock()
	t.inputs = in
	t.mu.Unlock()
}

func (t *Teleop) Inputs() Inputs {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inputs
}

// ProfileSource replays a profile against a clock, starting at the
// clock's reading when it was created.
type ProfileSource struct {
	profile *profile.Profile
	clock   clock.Clock
	start   float64
}

func NewProfileSource(p *profile.Profile, clk clock.Clock) *ProfileSource {
	return &ProfileSource{profile: p, clock: clk, start: clk.Seconds()}
}

func (s *ProfileSource) Inputs() Inputs {
	// rounded so that float drift in the clock cannot land just short of a step
	offset := time.Duration(math.Round((s.clock.Seconds() - s.start) * float64(time.Second)))
	step := s.profile.At(offset)
	return Inputs{Y: step.Y, X: step.X, Rotation: step.Rotation}
}
