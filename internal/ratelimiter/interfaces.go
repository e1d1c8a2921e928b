package ratelimiter

import (
	"fmt"
	"strings"

	"github.com/lowc1012/drivetrain-limiter/internal/clock"
)

// Type defines the type of rate limiter.
type Type uint32

const (
	AccelerationLimiterType Type = iota
	SlewRateLimiterType
	PassthroughType
)

var typeStrings = map[Type]string{
	AccelerationLimiterType: "acceleration",
	SlewRateLimiterType:     "slew",
	PassthroughType:         "passthrough",
}

func (t Type) String() string {
	if s, ok := typeStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", uint32(t))
}

// ParseType maps a configuration name onto a Type.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, s := range typeStrings {
		if s == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// Filter limits how fast a per-cycle scalar command may change.
// Implementations are not safe for concurrent use; each axis owns one.
type Filter interface {
	// Calculate filters input against the time elapsed since the last call.
	Calculate(input float64) float64
	// Reset forgets the history and restarts from value at the current time.
	Reset(value float64)
	// Value returns the last emitted output.
	Value() float64
	Type() Type
}

// New creates a filter of the given type. The rate limit is ignored for
// PassthroughType.
func New(t Type, rateLimit float64, clk clock.Clock) (Filter, error) {
	switch t {
	case AccelerationLimiterType:
		l, err := NewAccelerationLimiter(rateLimit, clk)
		if err != nil {
			return nil, err
		}
		return l, nil
	case SlewRateLimiterType:
		l, err := NewSlewRateLimiter(rateLimit, clk)
		if err != nil {
			return nil, err
		}
		return l, nil
	case PassthroughType:
		return NewPassthrough(), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownType, t)
	}
}
