package ratelimiter

import "errors"

var (
	// ErrInvalidRateLimit is returned when a rate limit is not a finite
	// positive number.
	ErrInvalidRateLimit = errors.New("rate limit must be a finite positive number")
	ErrNilClock         = errors.New("clock must not be nil")
	ErrUnknownType      = errors.New("unknown rate limiter type")
)
