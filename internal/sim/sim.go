// Package sim replays an input profile through the rate limited drive on
// a simulated clock, one control cycle at a time.
package sim

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/lowc1012/drivetrain-limiter/internal/clock"
	"github.com/lowc1012/drivetrain-limiter/internal/control"
	"github.com/lowc1012/drivetrain-limiter/internal/drive"
	"github.com/lowc1012/drivetrain-limiter/internal/log"
	"github.com/lowc1012/drivetrain-limiter/internal/profile"
	"github.com/lowc1012/drivetrain-limiter/internal/telemetry"
	"go.uber.org/zap"
)

// Options configures a simulated drive.
type Options struct {
	Drive        drive.Config
	FieldCentric bool
	RateLimited  bool
	// Heading is the simulated gyro reading in degrees.
	Heading float64
}

// Result is every command sent during a run.
type Result struct {
	Name     string
	Commands []drive.Command
}

// Run replays p cycle by cycle. The clock starts at zero and the first
// cycle runs one period in.
func Run(ctx context.Context, p *profile.Profile, opts Options, recorder telemetry.Recorder) (*Result, error) {
	clk := clock.NewManual(0)
	hw := drive.NewSimHardware()

	d, err := drive.NewSubsystem(opts.Drive, hw.MotorSet(), hw.Drive, hw.Gyro, clk)
	if err != nil {
		return nil, err
	}
	hw.Gyro.SetAngle(opts.Heading)

	loop, err := control.NewLoop(control.Config{
		Period:       p.Period,
		FieldCentric: opts.FieldCentric,
		RateLimited:  opts.RateLimited,
	}, d, control.NewProfileSource(p, clk), recorder)
	if err != nil {
		return nil, err
	}

	res := &Result{Name: p.Name, Commands: make([]drive.Command, 0, p.Cycles())}
	for i := 0; i < p.Cycles(); i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		clk.Advance(p.Period)
		cmd, err := loop.Step(ctx)
		if err != nil {
			return res, fmt.Errorf("cycle %d: %w", i+1, err)
		}
		res.Commands = append(res.Commands, cmd)
	}
	d.Stop()

	log.Logger().Debug("Simulation finished",
		zap.String("profile", p.Name), zap.Int("cycles", len(res.Commands)))
	return res, nil
}

// Render formats a result as a table, one row per cycle.
func Render(res *Result) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if res.Name != "" {
		t.SetTitle(res.Name)
	}
	t.AppendHeader(table.Row{"t (s)", "y in", "y out", "x in", "x out", "rot in", "rot out", "y branch"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})

	for _, c := range res.Commands {
		t.AppendRow(table.Row{
			num(c.Time),
			num(c.Y.Input), num(c.Y.Output),
			num(c.X.Input), num(c.X.Output),
			num(c.Rotation.Input), num(c.Rotation.Output),
			c.Y.Branch,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "cycles", strconv.Itoa(len(res.Commands))})
	return t.Render()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
