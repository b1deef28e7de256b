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

func newNotifyCommand() *cobra.Command {
	notifyCmd := &cobra.Command{
		Use:   "notify",
		Short: "Send the pool composition to a Telegram chat",
		Long: "Send the pool composition to a Telegram chat.\n\n" +
			"The bot token and chat id are read from TELEGRAM_BOT_TOKEN and CHAT_ID.",
		Args: cobra.NoArgs,
		RunE: runNotify,
	}
	addCommonFlags(notifyCmd)
	notifyCmd.Flags().String("telegram-api", notify.DefaultTelegramAPI, "Telegram Bot API base URL")
	notifyCmd.Flags().String("parse-mode", notify.DefaultParseMode, "sendMessage parse_mode; empty sends plain text")
	notifyCmd.Flags().Bool("report-failures", true, "post a short notice to the chat when a run fails before delivery")
	return notifyCmd
}

func runNotify(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadNotify(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newStageSetup(cfg.Config, "notify")
	if err != nil {
		return err
	}
	defer func() { s.cleanup() }()

	if cfg.Credentials.BotToken == "" || cfg.Credentials.ChatID == "" {
		s.logger.Warn("telegram credentials missing; delivery will fail",
			zap.Bool("token_set", cfg.Credentials.BotToken != ""),
			zap.Bool("chat_id_set", cfg.Credentials.ChatID != ""),
		)
	}

	sink := notify.NewTelegramSink(notify.TelegramConfig{
		APIBase:   cfg.TelegramAPI,
		Token:     cfg.Credentials.BotToken,
		ChatID:    cfg.Credentials.ChatID,
		ParseMode: cfg.ParseMode,
		Timeout:   cfg.Timeout,
	}, s.logger)

	style := render.ChatMessage
	if cfg.ParseMode == "" {
		style = render.Console
	}

	if err := s.build(ctx, cfg.Config); err != nil {
		s.logger.Error("setup failed", zap.Error(err))
		if cfg.ReportFailures {
			pipeline.NotifyFailure(ctx, sink, cfg.Pool, style, err, s.logger)
		}
		return err
	}

	runner := pipeline.NewRunner(pipeline.RunConfig{
		Pool:           cfg.Pool,
		Style:          style,
		ReportFailures: cfg.ReportFailures,
		MetricsFile:    cfg.MetricsFile,
	}, s.fetcher, sink, s.logger, s.opts...)

	return runner.Run(ctx)
}
