package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/config"
	"poolScope/internal/notify"
	"poolScope/internal/pipeline"
	"poolScope/internal/render"
)

func newReportCommand() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print the pool composition to stdout",
		Args:  cobra.NoArgs,
		RunE:  runReport,
	}
	addCommonFlags(reportCmd)
	return reportCmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newStageSetup(cfg, "report")
	if err != nil {
		return err
	}
	defer func() { s.cleanup() }()

	if err := s.build(ctx, cfg); err != nil {
		s.logger.Error("setup failed", zap.Error(err))
		return err
	}

	runner := pipeline.NewRunner(pipeline.RunConfig{
		Pool:        cfg.Pool,
		Style:       render.Console,
		MetricsFile: cfg.MetricsFile,
	}, s.fetcher, notify.NewConsoleSink(cmd.OutOrStdout()), s.logger, s.opts...)

	return runner.Run(ctx)
}
