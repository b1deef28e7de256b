package notify

import (
	"context"
	"fmt"
	"io"
)

// Sink delivers a rendered report.
type Sink interface {
	Deliver(ctx context.Context, text string) error
}

// ConsoleSink writes reports to a writer, one report per call.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink returns a sink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Deliver writes text followed by a newline.
func (s *ConsoleSink) Deliver(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := io.WriteString(s.w, text+"\n"); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

var (
	_ Sink = (*ConsoleSink)(nil)
	_ Sink = (*TelegramSink)(nil)
)
