package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
)

// cli carries state shared by every subcommand.
type cli struct {
	out      io.Writer
	logLevel string
	cfg      *config.Config
	logger   *zap.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	app := &cli{out: out}

	root := &cobra.Command{
		Use:           "timetable",
		Short:         "Generate and inspect weekly batch timetables offline",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(
		newGenerateCmd(app),
		newHoursCmd(app),
		newTokenCmd(app),
	)
	return root
}

func (a *cli) init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logr
	return nil
}
