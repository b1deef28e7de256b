package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"poolScope/internal/curve"
	"poolScope/internal/model"
	"poolScope/internal/notify"
	"poolScope/internal/render"
	"poolScope/internal/share"
)

// Fetcher retrieves the upstream pool listing.
type Fetcher interface {
	Fetch(ctx context.Context) (*curve.Document, error)
}

// Verifier checks a selected pool before computation.
type Verifier interface {
	Verify(ctx context.Context, pool model.PoolRecord) error
}

// Recorder receives the outcome of a run.
type Recorder interface {
	ObserveReport(report model.PoolReport)
	ObserveSuccess(at time.Time)
	ObserveFailure(stage string, at time.Time)
	WriteTextfile(path string) error
}

// RunConfig holds runtime settings for one report.
type RunConfig struct {
	Pool           string
	Style          render.Style
	ReportFailures bool
	MetricsFile    string
}

// Runner executes fetch, select, verify, compute, render and deliver in order.
type Runner struct {
	cfg      RunConfig
	fetcher  Fetcher
	verifier Verifier
	sink     notify.Sink
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// Option customises a Runner.
type Option func(*Runner)

// WithVerifier enables the verify stage.
func WithVerifier(v Verifier) Option {
	return func(r *Runner) { r.verifier = v }
}

// WithRecorder enables metrics. Nothing is written unless RunConfig.MetricsFile is set.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, fetcher Fetcher, sink notify.Sink, logger *zap.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Pool == "" {
		cfg.Pool = curve.DefaultPool
	}
	r := &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		sink:    sink,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run produces and delivers one report. A failure is returned as *StageError.
func (r *Runner) Run(ctx context.Context) error {
	if r.fetcher == nil {
		return fmt.Errorf("fetcher is nil")
	}
	if r.sink == nil {
		return fmt.Errorf("sink is nil")
	}

	report, err := r.produce(ctx)
	if err == nil {
		text := render.Render(report, r.cfg.Style)
		if deliverErr := r.sink.Deliver(ctx, text); deliverErr != nil {
			err = &StageError{Stage: StageDeliver, Err: deliverErr}
		}
	}

	if err != nil {
		r.fail(ctx, err)
		return err
	}

	r.logger.Info("report delivered",
		zap.String("pool", report.PoolName),
		zap.Int("assets", len(report.Lines)),
		zap.String("usd_total", report.TotalUSD.String()),
		zap.String("total_percent", report.TotalPercent.StringFixed(4)),
	)
	if r.recorder != nil {
		r.recorder.ObserveSuccess(r.now())
	}
	r.flushMetrics()
	return nil
}

func (r *Runner) produce(ctx context.Context) (model.PoolReport, error) {
	r.logger.Info("fetch pool listing", zap.String("pool", r.cfg.Pool))
	doc, err := r.fetcher.Fetch(ctx)
	if err != nil {
		return model.PoolReport{}, &StageError{Stage: StageFetch, Err: err}
	}

	pool, err := curve.SelectPool(doc, r.cfg.Pool)
	if err != nil {
		return model.PoolReport{}, &StageError{Stage: StageSelect, Err: err}
	}
	r.logger.Debug("pool selected", zap.String("pool", pool.Name), zap.String("address", pool.Address), zap.Int("coins", len(pool.Coins)))

	if r.verifier != nil {
		if err := r.verifier.Verify(ctx, pool); err != nil {
			return model.PoolReport{}, &StageError{Stage: StageVerify, Err: err}
		}
	}

	report, err := share.ComputeReport(pool)
	if err != nil {
		return model.PoolReport{}, &StageError{Stage: StageCompute, Err: err}
	}
	if r.recorder != nil {
		r.recorder.ObserveReport(report)
	}
	return report, nil
}

func (r *Runner) fail(ctx context.Context, err error) {
	stage := stageOf(err)
	r.logger.Error("report failed", zap.String("stage", string(stage)), zap.String("pool", r.cfg.Pool), zap.Error(err))

	if r.recorder != nil {
		r.recorder.ObserveFailure(string(stage), r.now())
	}
	r.flushMetrics()

	if r.cfg.ReportFailures {
		NotifyFailure(ctx, r.sink, r.cfg.Pool, r.cfg.Style, err, r.logger)
	}
}

func (r *Runner) flushMetrics() {
	if r.recorder == nil || r.cfg.MetricsFile == "" {
		return
	}
	if err := r.recorder.WriteTextfile(r.cfg.MetricsFile); err != nil {
		r.logger.Warn("metrics not written", zap.String("path", r.cfg.MetricsFile), zap.Error(err))
	}
}

// FailureNotice is the short message posted to the chat when a run fails before delivery.
func FailureNotice(pool string, err error) string {
	stage := stageOf(err)
	cause := err
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		cause = stageErr.Err
	}
	return fmt.Sprintf("%s report unavailable: %s failed: %v", pool, stage, cause)
}

// NotifyFailure posts the failure notice for err to sink. Nothing is sent when the deliver
// stage itself failed. A notice that cannot be delivered is only logged.
func NotifyFailure(ctx context.Context, sink notify.Sink, pool string, style render.Style, err error, logger *zap.Logger) {
	if sink == nil || stageOf(err) == StageDeliver {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	notice := FailureNotice(pool, err)
	if style == render.ChatMessage {
		notice = render.EscapeMarkdown(notice)
	}
	if noticeErr := sink.Deliver(ctx, notice); noticeErr != nil {
		logger.Warn("failure notice not delivered", zap.Error(noticeErr))
	}
}

func stageOf(err error) Stage {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return "run"
}
