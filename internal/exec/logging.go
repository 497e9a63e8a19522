package exec

import (
	"log/slog"
	"time"
)

// LoggingExprEvaluator wraps an ExprEvaluator and logs each evaluation
// at debug level, mirroring the teacher's LoggingActionRunner
// decorator shape.
type LoggingExprEvaluator struct {
	inner  ExprEvaluator
	logger *slog.Logger
}

// NewLoggingExprEvaluator wraps inner with logging.
func NewLoggingExprEvaluator(inner ExprEvaluator, logger *slog.Logger) *LoggingExprEvaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingExprEvaluator{inner: inner, logger: logger}
}

// Eval delegates to inner, logging the expression, duration, and
// outcome.
func (l *LoggingExprEvaluator) Eval(code string, env map[string]any) (any, error) {
	start := time.Now()
	v, err := l.inner.Eval(code, env)
	l.logger.Debug("expression evaluated", "expr", code, "elapsed", time.Since(start), "error", err)
	return v, err
}
