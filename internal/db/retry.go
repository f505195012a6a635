package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	readRetries     = 3
	readBackoffBase = 50 * time.Millisecond
)

// RetryRead runs an idempotent read with bounded exponential backoff.
// Missing rows and context errors are returned immediately.
func RetryRead(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(readRetries, retry.NewExponential(readBackoffBase))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil || !retryable(err) {
			return err
		}
		return retry.RetryableError(err)
	})
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, sql.ErrNoRows),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
