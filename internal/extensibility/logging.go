package extensibility

import (
	"log/slog"
	"time"

	"github.com/scxml-go/scxml/internal/data"
)

// LoggingIOProcessor wraps a Sender and logs every delivery attempt,
// generalizing the teacher's extensibility.LoggingActionRunner
// (log.Printf timing around action execution) to slog's structured
// attributes around send/cancel.
type sender interface {
	Send(target, eventType string, ev data.Event, delay time.Duration) error
	Cancel(sendID string)
}

type LoggingIOProcessor struct {
	inner  sender
	logger *slog.Logger
}

// NewLoggingIOProcessor wraps inner with debug-level logging.
func NewLoggingIOProcessor(inner *IOProcessor, logger *slog.Logger) *LoggingIOProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingIOProcessor{inner: inner, logger: logger}
}

// Send delegates to inner, logging the outcome.
func (p *LoggingIOProcessor) Send(target, eventType string, ev data.Event, delay time.Duration) error {
	start := time.Now()
	err := p.inner.Send(target, eventType, ev, delay)
	p.logger.Debug("send dispatched",
		slog.String("event", ev.Name),
		slog.String("target", target),
		slog.Duration("delay", delay),
		slog.Duration("elapsed", time.Since(start)),
		slog.Any("error", err),
	)
	return err
}

// Cancel delegates to inner, logging the attempt.
func (p *LoggingIOProcessor) Cancel(sendID string) {
	p.logger.Debug("send cancelled", slog.String("sendid", sendID))
	p.inner.Cancel(sendID)
}
