// Package telemetry records what the drive axes were asked for and what
// the rate limiters let through.
package telemetry

import (
	"context"
	"errors"

	"github.com/lowc1012/drivetrain-limiter/internal/drive"
)

// Sample is one axis of one control cycle.
type Sample struct {
	Axis   string  `json:"axis" redis:"axis"`
	Time   float64 `json:"time" redis:"time"`
	Input  float64 `json:"input" redis:"input"`
	Output float64 `json:"output" redis:"output"`
	Branch string  `json:"branch,omitempty" redis:"branch"`
}

// FromCommand splits a drive command into per-axis samples.
func FromCommand(c drive.Command) []Sample {
	samples := make([]Sample, 0, len(drive.Axes))
	for _, axis := range drive.Axes {
		st := c.Axis(axis)
		samples = append(samples, Sample{
			Axis:   string(axis),
			Time:   c.Time,
			Input:  st.Input,
			Output: st.Output,
			Branch: st.Branch,
		})
	}
	return samples
}

// Recorder persists samples. Close releases whatever the recorder owns.
type Recorder interface {
	Record(ctx context.Context, samples ...Sample) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Record(context.Context, ...Sample) error { return nil }

func (Nop) Close() error { return nil }

// Multi records to every recorder, joining their errors.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, samples ...Sample) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, samples...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every recorder, joining their errors.
func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
