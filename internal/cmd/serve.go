package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lowc1012/drivetrain-limiter/internal/clock"
	"github.com/lowc1012/drivetrain-limiter/internal/control"
	"github.com/lowc1012/drivetrain-limiter/internal/drive"
	"github.com/lowc1012/drivetrain-limiter/internal/log"
	"github.com/lowc1012/drivetrain-limiter/internal/server"
	"github.com/lowc1012/drivetrain-limiter/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the control loop on simulated hardware with an HTTP teleop API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := root.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hw := drive.NewSimHardware()
			d, err := drive.NewSubsystem(cfg.DriveSettings(), hw.MotorSet(), hw.Drive, hw.Gyro, clock.NewMonotonic())
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			recorders := telemetry.Multi{telemetry.NewMetrics(reg)}
			if cfg.Redis.Enabled {
				client := redis.NewClient(&redis.Options{
					Addr: cfg.Redis.Addr,
				})
				if err := client.Ping(ctx).Err(); err != nil {
					log.Logger().Error("Failed to reach redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
					_ = client.Close()
					return err
				}
				rr := telemetry.NewRedisRecorder(client, cfg.Redis.KeyPrefix)
				log.Logger().Info("Recording telemetry", zap.String("run", rr.RunID()))
				recorders = append(recorders, rr)
			}
			defer closeRecorder(recorders)

			teleop := &control.Teleop{}
			loop, err := control.NewLoop(cfg.LoopSettings(), d, teleop, recorders)
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return loop.Run(ctx)
			})
			g.Go(func() error {
				return server.ListenAndServe(ctx, cfg.Server.Addr, server.NewHandler(loop, teleop, reg), cfg.Server.ShutdownTimeout)
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "override server.addr")
	return cmd
}

func closeRecorder(r telemetry.Recorder) {
	if err := r.Close(); err != nil {
		log.Logger().Warn("Failed to close telemetry recorder", zap.Error(err))
	}
}
