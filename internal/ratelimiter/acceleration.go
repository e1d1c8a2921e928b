package ratelimiter

import (
	"fmt"
	"math"

	"github.com/lowc1012/drivetrain-limiter/internal/clock"
)

// ensure that AccelerationLimiter satisfies the Filter interface
var _ Filter = &AccelerationLimiter{}

// Transition is the branch a Calculate call took.
type Transition uint8

const (
	// TransitionAccelerating means the request grew in magnitude without
	// changing sign and the output was clamped toward it.
	TransitionAccelerating Transition = iota
	// TransitionReleasing means the request shrank, held or reversed and
	// the output snapped to it.
	TransitionReleasing
)

func (t Transition) String() string {
	switch t {
	case TransitionAccelerating:
		return "accelerating"
	case TransitionReleasing:
		return "releasing"
	default:
		return fmt.Sprintf("Transition(%d)", uint8(t))
	}
}

// Sample describes a single Calculate call.
type Sample struct {
	Time       float64
	Elapsed    float64
	Input      float64
	Output     float64
	Transition Transition
}

// AccelerationLimiter limits how quickly a command may grow in magnitude.
// Moving toward zero or reversing direction is passed through untouched:
// only speeding up is rate limited.
type AccelerationLimiter struct {
	clock         clock.Clock
	rateLimit     float64 // units per second
	previousValue float64
	previousTime  float64
}

// NewAccelerationLimiter creates a limiter allowing the output magnitude
// to grow by at most rateLimit units per second.
func NewAccelerationLimiter(rateLimit float64, clk clock.Clock) (*AccelerationLimiter, error) {
	if err := validate(rateLimit, clk); err != nil {
		return nil, err
	}
	return &AccelerationLimiter{
		clock:        clk,
		rateLimit:    rateLimit,
		previousTime: clk.Seconds(),
	}, nil
}

func (l *AccelerationLimiter) Type() Type {
	return AccelerationLimiterType
}

func (l *AccelerationLimiter) RateLimit() float64 {
	return l.rateLimit
}

func (l *AccelerationLimiter) Value() float64 {
	return l.previousValue
}

func (l *AccelerationLimiter) Reset(value float64) {
	l.previousValue = value
	l.previousTime = l.clock.Seconds()
}

// Calculate returns input limited to the configured acceleration.
func (l *AccelerationLimiter) Calculate(input float64) float64 {
	return l.CalculateSample(input).Output
}

// CalculateSample is Calculate, also reporting which branch was taken.
func (l *AccelerationLimiter) CalculateSample(input float64) Sample {
	now := l.clock.Seconds()
	elapsed := elapsedSince(l.previousTime, now)
	s := Sample{Time: now, Elapsed: elapsed, Input: input}

	if sameDirection(input, l.previousValue) && math.Abs(input) > math.Abs(l.previousValue) {
		maxDelta := l.rateLimit * elapsed
		l.previousValue += clamp(input-l.previousValue, -maxDelta, maxDelta)
		s.Transition = TransitionAccelerating
	} else {
		l.previousValue = input
		s.Transition = TransitionReleasing
	}

	l.previousTime = now
	s.Output = l.previousValue
	return s
}

// sameDirection reports whether input continues the motion of previous.
// A stationary previous value counts as any direction.
func sameDirection(input, previous float64) bool {
	return previous == 0 || (input > 0 && previous > 0) || (input < 0 && previous < 0)
}

// elapsedSince floors the interval at zero so a clock stepping backwards
// can never invert the clamp range.
func elapsedSince(previous, now float64) float64 {
	elapsed := now - previous
	if elapsed < 0 || math.IsNaN(elapsed) {
		return 0
	}
	return elapsed
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func validate(rateLimit float64, clk clock.Clock) error {
	if !(rateLimit > 0) || math.IsInf(rateLimit, 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidRateLimit, rateLimit)
	}
	if clk == nil {
		return ErrNilClock
	}
	return nil
}
