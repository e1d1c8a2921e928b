package main

import (
	"os"

	"github.com/lowc1012/drivetrain-limiter/internal/cmd"
	"github.com/lowc1012/drivetrain-limiter/internal/log"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = ""
)

func main() {
	cmd.SetVersionInfo(version, commit)
	if err := cmd.Execute(); err != nil {
		log.Logger().Error("Command failed", zap.Error(err))
		_ = log.Logger().Sync()
		os.Exit(1)
	}
}
