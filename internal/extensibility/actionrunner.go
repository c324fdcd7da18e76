package extensibility

import (
	"context"
	"log/slog"
	"time"

	"github.com/comalice/riskbox/internal/core"
)

// DefaultActionRunner runs every action directly.
type DefaultActionRunner struct{}

// Run executes the action.
func (r *DefaultActionRunner) Run(_ context.Context, _ core.ActionInfo, exec func() error) error {
	return exec()
}

// LoggingActionRunner wraps an ActionRunner and logs around execution.
type LoggingActionRunner struct {
	inner  core.ActionRunner
	logger *slog.Logger
}

// NewLoggingActionRunner creates a new LoggingActionRunner wrapping inner.
// A nil inner runs actions directly.
func NewLoggingActionRunner(inner core.ActionRunner, logger *slog.Logger) *LoggingActionRunner {
	if inner == nil {
		inner = &DefaultActionRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingActionRunner{inner: inner, logger: logger}
}

// Run logs before and after delegating to the inner runner.
func (r *LoggingActionRunner) Run(ctx context.Context, info core.ActionInfo, exec func() error) error {
	attrs := []any{
		"actor", info.Actor,
		"action", info.Action,
		"kind", info.Kind.String(),
		"event", info.Event.Type,
	}
	r.logger.DebugContext(ctx, "running action", attrs...)
	start := time.Now()
	err := r.inner.Run(ctx, info, exec)
	attrs = append(attrs, "duration", time.Since(start))
	if err != nil {
		r.logger.WarnContext(ctx, "action failed", append(attrs, "err", err)...)
		return err
	}
	r.logger.DebugContext(ctx, "action completed", attrs...)
	return nil
}
