package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// RetryConfig bounds the retry loop for transient fetch failures.
// MaxRetries counts attempts after the first.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig keeps judge traffic polite: few attempts, generous waits.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:  2,
	InitialWait: 1 * time.Second,
	MaxWait:     8 * time.Second,
	Multiplier:  2.0,
}

// RetryDo runs fn, retrying transient failures with exponential backoff.
// Non-retryable errors and context cancellation end the loop immediately.
func RetryDo[T any](ctx context.Context, rc RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	wait := rc.InitialWait
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if !isRetryable(err) || attempt >= rc.MaxRetries {
			return zero, err
		}
		slog.Debug("retrying fetch",
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
			slog.Any("error", err))
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
		wait = time.Duration(float64(wait) * rc.Multiplier)
		if wait > rc.MaxWait {
			wait = rc.MaxWait
		}
	}
}

// retryHTTP sends a request via fn and retries transient failures.
// Retryable statuses are converted into errors so RetryDo loops on them;
// any other response passes through for the caller to judge.
func retryHTTP(ctx context.Context, rc RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	return RetryDo(ctx, rc, func() (*http.Response, error) {
		resp, err := fn()
		if err != nil {
			return nil, err
		}
		if isRetryableStatus(resp.StatusCode) {
			resp.Body.Close()
			return nil, &httpStatusError{StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
}

// httpStatusError marks a response status that retryHTTP may try again.
type httpStatusError struct {
	StatusCode int
}

func (e *httpStatusError) Error() string {
	return http.StatusText(e.StatusCode)
}

// isRetryable reports whether err is transient enough to try again.
func isRetryable(err error) bool {
	var statusErr *httpStatusError
	var opErr *net.OpError
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &statusErr):
		return true
	case errors.As(err, &opErr), errors.As(err, &dnsErr):
		return true
	}
	// Generic net.Error last: OpError implements it too, and for OpError
	// the answer should not hinge on Timeout().
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isRetryableStatus reports whether a status code is worth another attempt.
func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
