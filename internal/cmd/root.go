package cmd

import (
	"fmt"

	"github.com/lowc1012/drivetrain-limiter/internal/config"
	"github.com/lowc1012/drivetrain-limiter/internal/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version info set by main package
var versionInfo struct {
	Version string
	Commit  string
}

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
}

type rootOptions struct {
	cfgFile  string
	logLevel string
	cfg      *config.Config
}

// NewRootCmd builds the drivetrain command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "drivetrain",
		Short:         "Acceleration limited mecanum drivetrain",
		Long:          "Run or simulate a mecanum drivetrain whose axes are acceleration limited.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (YAML)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newSimulateCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	v, err := config.New(o.cfgFile)
	if err != nil {
		return err
	}
	if err := v.BindPFlag("logging.level", cmd.Flags().Lookup("log-level")); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if !log.SetLevel(cfg.Logging.Level) {
		return fmt.Errorf("unknown log level %q", cfg.Logging.Level)
	}
	log.Logger().Debug("Configuration loaded", zap.String("file", v.ConfigFileUsed()))
	o.cfg = cfg
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			version := versionInfo.Version
			if version == "" {
				version = "dev"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "drivetrain %s", version)
			if versionInfo.Commit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", versionInfo.Commit)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		},
	}
}
