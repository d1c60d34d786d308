package usecase

import (
	"context"
	"time"

	apperrors "github.com/allisson/pii-vault/internal/errors"
)

// retryTransient runs fn, retrying with exponential backoff while the error
// chain carries ErrTransient. Any other error, including ErrFatalConfig and
// authentication failures, is returned on the first attempt.
func retryTransient(ctx context.Context, cfg WorkerConfig, fn func(ctx context.Context) error) error {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := cfg.RetryBaseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil || !apperrors.Is(err, apperrors.ErrTransient) {
			return err
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if cfg.RetryMaxDelay > 0 && delay > cfg.RetryMaxDelay {
			delay = cfg.RetryMaxDelay
		}
	}

	return err
}
