package utils

import (
	"fmt"
	"log/slog"
)

// TryOr runs fn and returns its value. If fn returns an error or panics, the
// failure is logged under op and fallback is returned instead. It is the single
// place where a collaborator call is allowed to degrade instead of propagating.
func TryOr[T any](logger *slog.Logger, op string, fallback T, fn func() (T, error)) (result T) {
	defer func() {
		if r := recover(); r != nil {
			logFailure(logger, op, fmt.Errorf("panic: %v", r))
			result = fallback
		}
	}()

	v, err := fn()
	if err != nil {
		logFailure(logger, op, err)
		return fallback
	}
	return v
}

func logFailure(logger *slog.Logger, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("degraded collaborator call", slog.String("op", op), slog.Any("error", err))
}
