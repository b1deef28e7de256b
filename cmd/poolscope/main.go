package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"poolScope/internal/chain"
	"poolScope/internal/config"
	"poolScope/internal/curve"
	"poolScope/internal/erc20"
	"poolScope/internal/metrics"
	"poolScope/internal/pipeline"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(pipeline.ExitCode(err))
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "poolscope",
		Short:        "Curve pool composition reporter",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(newReportCommand())
	root.AddCommand(newNotifyCommand())

	return root
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("endpoint", curve.DefaultEndpoint, "pool listing endpoint; the chain name is appended")
	cmd.Flags().String("chain", curve.DefaultChain, "chain whose pools are listed")
	cmd.Flags().String("pool", curve.DefaultPool, "pool name, matched exactly")
	cmd.Flags().Duration("timeout", 30*time.Second, "HTTP timeout for upstream calls")
	cmd.Flags().String("rpc", "", "Ethereum RPC URL; enables decimals verification")
	cmd.Flags().String("metrics-file", "", "write Prometheus textfile metrics to this path")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// stageSetup holds what both subcommands build before running the pipeline.
type stageSetup struct {
	fetcher *curve.Client
	opts    []pipeline.Option
	cleanup func()
	logger  *zap.Logger
}

// newStageSetup creates the run logger. Stages are wired later by build so that a
// failure while wiring them can still be logged and reported.
func newStageSetup(cfg config.Config, command string) (*stageSetup, error) {
	baseLogger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return &stageSetup{
		logger:  baseLogger.With(zap.String("run_id", uuid.NewString()), zap.String("command", command)),
		cleanup: func() { _ = baseLogger.Sync() },
	}, nil
}

func (s *stageSetup) build(ctx context.Context, cfg config.Config) error {
	fetcher, err := curve.NewClient(curve.Config{
		Endpoint: cfg.Endpoint,
		Chain:    cfg.Chain,
		Timeout:  cfg.Timeout,
	}, s.logger)
	if err != nil {
		return err
	}
	s.fetcher = fetcher

	if cfg.MetricsFile != "" {
		s.opts = append(s.opts, pipeline.WithRecorder(metrics.NewRecorder()))
	}

	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		syncLogger := s.cleanup
		s.cleanup = func() {
			chainClient.Close()
			syncLogger()
		}

		chainID, err := chainClient.GetChainID(ctx)
		if err != nil {
			return &pipeline.StageError{Stage: pipeline.StageVerify, Err: fmt.Errorf("get chain id: %w", err)}
		}
		s.logger.Info("decimals verification enabled", zap.String("chain_id", chainID.String()))
		s.opts = append(s.opts, pipeline.WithVerifier(erc20.NewVerifier(chainClient, s.logger)))
	}

	s.logger.Info("poolscope start",
		zap.String("url", fetcher.URL()),
		zap.String("pool", cfg.Pool),
		zap.Duration("timeout", cfg.Timeout),
		zap.Bool("verify_decimals", cfg.RPCURL != ""),
		zap.String("metrics_file", cfg.MetricsFile),
	)
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
