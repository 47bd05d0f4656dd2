package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/codeharvest"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second}
}

// Ensure RetryFetcher implements codeharvest.Fetcher at compile time.
var _ codeharvest.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher retries transient fetch failures of the wrapped Fetcher.
// One retry is made per entry in Delays, sleeping that long beforehand.
type RetryFetcher struct {
	next   codeharvest.Fetcher
	Delays []time.Duration

	// Logger, if set, receives one message per retry.
	Logger *slog.Logger
}

// NewRetryFetcher wraps next with the default retry delays.
func NewRetryFetcher(next codeharvest.Fetcher) *RetryFetcher {
	return &RetryFetcher{next: next, Delays: DefaultRetryDelays()}
}

// Fetch calls the wrapped fetcher until it succeeds, fails permanently, or
// the delays are used up. The last error is returned.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	maxAttempts := len(f.Delays) + 1 // 1 initial + N retries

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := f.next.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 || !Retryable(err) {
			break
		}

		if f.Logger != nil {
			f.Logger.Warn("retry fetch", "url", url, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return "", codeharvest.WrapError(codeharvest.EFETCH, ctx.Err(), "fetch of %s canceled", url)
		case <-time.After(f.Delays[attempt]):
		}
	}

	return "", lastErr
}

// Close delegates to the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.next.Close()
}

// Retryable reports whether a fetch error is worth another attempt.
// Cancellation and client errors other than 408 and 429 are permanent.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= 500:
			return true
		default:
			return false
		}
	}

	return true
}
