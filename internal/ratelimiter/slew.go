package ratelimiter

import "github.com/lowc1012/drivetrain-limiter/internal/clock"

var _ Filter = &SlewRateLimiter{}

// SlewRateLimiter limits the rate of change in both directions, so
// braking and reversing are ramped just like speeding up.
type SlewRateLimiter struct {
	clock         clock.Clock
	rateLimit     float64
	previousValue float64
	previousTime  float64
}

// NewSlewRateLimiter creates a symmetric limiter of rateLimit units per second.
func NewSlewRateLimiter(rateLimit float64, clk clock.Clock) (*SlewRateLimiter, error) {
	if err := validate(rateLimit, clk); err != nil {
		return nil, err
	}
	return &SlewRateLimiter{
		clock:        clk,
		rateLimit:    rateLimit,
		previousTime: clk.Seconds(),
	}, nil
}

func (l *SlewRateLimiter) Type() Type {
	return SlewRateLimiterType
}

func (l *SlewRateLimiter) Value() float64 {
	return l.previousValue
}

func (l *SlewRateLimiter) Reset(value float64) {
	l.previousValue = value
	l.previousTime = l.clock.Seconds()
}

func (l *SlewRateLimiter) Calculate(input float64) float64 {
	now := l.clock.Seconds()
	maxDelta := l.rateLimit * elapsedSince(l.previousTime, now)
	l.previousValue += clamp(input-l.previousValue, -maxDelta, maxDelta)
	l.previousTime = now
	return l.previousValue
}
