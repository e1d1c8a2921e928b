package cmd

import (
	"context"
	"fmt"

	"github.com/lowc1012/drivetrain-limiter/internal/profile"
	"github.com/lowc1012/drivetrain-limiter/internal/ratelimiter"
	"github.com/lowc1012/drivetrain-limiter/internal/sim"
	"github.com/lowc1012/drivetrain-limiter/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newSimulateCmd(root *rootOptions) *cobra.Command {
	var (
		filter        string
		noRateLimit   bool
		robotRelative bool
		heading       float64
		record        bool
	)

	cmd := &cobra.Command{
		Use:   "simulate <profile.yaml>",
		Short: "Replay an input profile through the limited drive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			p, err := profile.Load(args[0])
			if err != nil {
				return err
			}

			opts := sim.Options{
				Drive:        cfg.DriveSettings(),
				FieldCentric: cfg.Loop.FieldCentric && !robotRelative,
				RateLimited:  cfg.Loop.RateLimited && !noRateLimit,
				Heading:      heading,
			}
			if filter != "" {
				if opts.Drive.Filter, err = ratelimiter.ParseType(filter); err != nil {
					return err
				}
			}

			var recorder telemetry.Recorder = telemetry.Nop{}
			if record {
				client := redis.NewClient(&redis.Options{
					Addr: cfg.Redis.Addr,
				})
				rr := telemetry.NewRedisRecorder(client, cfg.Redis.KeyPrefix)
				recorder = rr
				defer fmt.Fprintf(cmd.ErrOrStderr(), "recorded run %s\n", rr.RunID())
			}
			defer closeRecorder(recorder)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			res, err := sim.Run(ctx, p, opts, recorder)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sim.Render(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "override drive.filter (acceleration, slew, passthrough)")
	cmd.Flags().BoolVar(&noRateLimit, "no-rate-limit", false, "bypass the axis filters")
	cmd.Flags().BoolVar(&robotRelative, "robot-relative", false, "drive robot relative instead of field centric")
	cmd.Flags().Float64Var(&heading, "heading", 0, "simulated gyro heading in degrees")
	cmd.Flags().BoolVar(&record, "record", false, "record samples to redis.addr")
	return cmd
}
