// Package effects runs the best-effort work that follows a successful task mutation.
package effects

import (
	"context"
	"fmt"
	"log/slog"
)

// Effect is one secondary action such as a notification or a counter update.
type Effect struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner executes effects in order. A failing or panicking effect is logged and
// the remaining effects still run.
type Runner struct {
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Run executes every effect and reports how many failed.
func (r *Runner) Run(ctx context.Context, taskID string, effects ...Effect) int {
	failed := 0
	for _, effect := range effects {
		if effect.Run == nil {
			continue
		}
		if err := r.runOne(ctx, effect); err != nil {
			failed++
			r.logger.Warn("side effect failed",
				"task_id", taskID,
				"effect", effect.Name,
				"error", err,
			)
		}
	}
	return failed
}

func (r *Runner) runOne(ctx context.Context, effect Effect) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return effect.Run(ctx)
}
