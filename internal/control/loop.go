// Package control runs the periodic drive loop: read the operator, push
// the command through the rate limited drive, record what happened.
package control

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lowc1012/drivetrain-limiter/internal/drive"
	"github.com/lowc1012/drivetrain-limiter/internal/log"
	"github.com/lowc1012/drivetrain-limiter/internal/telemetry"
	"go.uber.org/zap"
)

// Config controls how the loop drives.
type Config struct {
	Period       time.Duration
	FieldCentric bool
	// RateLimited false bypasses the axis filters.
	RateLimited bool
}

// Loop owns the drive subsystem for as long as it runs. Step and Run must
// not be called concurrently; Last may be called from any goroutine.
type Loop struct {
	cfg      Config
	drive    *drive.Subsystem
	source   InputSource
	recorder telemetry.Recorder

	mu   sync.RWMutex
	last drive.Command
}

func NewLoop(cfg Config, d *drive.Subsystem, source InputSource, recorder telemetry.Recorder) (*Loop, error) {
	if cfg.Period <= 0 {
		return nil, errors.New("control: period must be positive")
	}
	if d == nil || source == nil {
		return nil, errors.New("control: drive and input source are required")
	}
	if recorder == nil {
		recorder = telemetry.Nop{}
	}
	return &Loop{cfg: cfg, drive: d, source: source, recorder: recorder}, nil
}

// Step runs one control cycle. The command is always sent; a recording
// failure is returned alongside it.
func (l *Loop) Step(ctx context.Context) (drive.Command, error) {
	in := l.source.Inputs()

	var cmd drive.Command
	switch {
	case l.cfg.FieldCentric && l.cfg.RateLimited:
		cmd = l.drive.DriveCartesianFieldCentric(in.Y, in.X, in.Rotation)
	case l.cfg.FieldCentric:
		cmd = l.drive.DriveCartesianFieldCentricNoRateLimit(in.Y, in.X, in.Rotation)
	case l.cfg.RateLimited:
		cmd = l.drive.DriveCartesian(in.Y, in.X, in.Rotation)
	default:
		cmd = l.drive.DriveCartesianNoRateLimit(in.Y, in.X, in.Rotation)
	}

	l.mu.Lock()
	l.last = cmd
	l.mu.Unlock()

	return cmd, l.recorder.Record(ctx, telemetry.FromCommand(cmd)...)
}

// Run steps once per period until ctx is done, then stops the drive.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.Period)
	defer ticker.Stop()
	defer l.drive.Stop()

	log.Logger().Info("Control loop started", zap.Duration("period", l.cfg.Period),
		zap.Bool("fieldCentric", l.cfg.FieldCentric), zap.Bool("rateLimited", l.cfg.RateLimited))

	for {
		select {
		case <-ctx.Done():
			log.Logger().Info("Control loop stopped")
			return nil
		case <-ticker.C:
			start := time.Now()
			if _, err := l.Step(ctx); err != nil {
				log.Logger().Warn("Failed to record control cycle", zap.Error(err))
			}
			if took := time.Since(start); took > l.cfg.Period {
				log.Logger().Warn("Control cycle overran its period",
					zap.Duration("took", took), zap.Duration("period", l.cfg.Period))
			}
		}
	}
}

// Last returns the most recent command sent to the drive.
func (l *Loop) Last() drive.Command {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.last
}
