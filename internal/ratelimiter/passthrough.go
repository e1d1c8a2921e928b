package ratelimiter

var _ Filter = &Passthrough{}

// Passthrough applies no limit. It backs the "no rate limit" drive modes.
type Passthrough struct {
	previousValue float64
}

func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

func (p *Passthrough) Type() Type {
	return PassthroughType
}

func (p *Passthrough) Value() float64 {
	return p.previousValue
}

func (p *Passthrough) Reset(value float64) {
	p.previousValue = value
}

func (p *Passthrough) Calculate(input float64) float64 {
	p.previousValue = input
	return input
}
