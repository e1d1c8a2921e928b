// Package profile describes scripted operator input: a timeline of
// joystick positions replayed by the simulator and the control loop.
package profile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidProfile = errors.New("invalid profile")

// Step holds the operator input from At until the next step.
type Step struct {
	At       time.Duration `yaml:"at"`
	Y        float64       `yaml:"y"`
	X        float64       `yaml:"x"`
	Rotation float64       `yaml:"rotation"`
}

// Profile is a timeline of operator input sampled once per Period.
type Profile struct {
	Name     string        `yaml:"name"`
	Period   time.Duration `yaml:"period"`
	Duration time.Duration `yaml:"duration"`
	Steps    []Step        `yaml:"steps"`
}

// Parse decodes and validates a YAML profile.
func Parse(r io.Reader) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads a profile from a file.
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Validate checks the period and step ordering. A zero Duration is
// replaced by one period past the last step.
func (p *Profile) Validate() error {
	if p.Period <= 0 {
		return fmt.Errorf("%w: period must be positive, got %v", ErrInvalidProfile, p.Period)
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidProfile)
	}
	for i, s := range p.Steps {
		if s.At < 0 {
			return fmt.Errorf("%w: step %d starts before zero", ErrInvalidProfile, i)
		}
	}
	if !sort.SliceIsSorted(p.Steps, func(i, j int) bool { return p.Steps[i].At < p.Steps[j].At }) {
		return fmt.Errorf("%w: steps must be ordered by time", ErrInvalidProfile)
	}
	if p.Duration < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidProfile)
	}
	if p.Duration == 0 {
		p.Duration = p.Steps[len(p.Steps)-1].At + p.Period
	}
	return nil
}

// At returns the step in effect at t. Before the first step the operator
// is at rest.
func (p *Profile) At(t time.Duration) Step {
	i := sort.Search(len(p.Steps), func(i int) bool { return p.Steps[i].At > t })
	if i == 0 {
		return Step{At: t}
	}
	return p.Steps[i-1]
}

// Cycles is the number of control cycles the profile spans.
func (p *Profile) Cycles() int {
	return int(p.Duration / p.Period)
}
