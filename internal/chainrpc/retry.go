package chainrpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const initialBackoff = 200 * time.Millisecond

// Provider throttling and connection faults worth another attempt. Anything
// else, reverts included, is final.
var transientMarkers = []string{
	"too many requests",
	"-32005",
	"429",
	"rate limit",
	"connection reset",
	"connection refused",
	"eof",
	"502 bad gateway",
	"503 service unavailable",
	"504 gateway timeout",
	"i/o timeout",
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "execution reverted") {
		return false
	}
	for _, m := range transientMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// IsRateLimit reports provider throttling (429 / -32005).
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "Too Many Requests") || strings.Contains(s, "-32005") || strings.Contains(s, "429")
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialBackoff
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.opts.MaxRetries)), ctx)
}

// withRetry runs one RPC under the rate limiter and a per-attempt timeout,
// retrying transient failures with exponential backoff. The last error is
// returned unwrapped so callers can still inspect revert data.
func withRetry[T any](ctx context.Context, c *Client, method string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		actx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()

		v, err := fn(actx)
		if err == nil {
			out = v
			return nil
		}
		if ctx.Err() != nil || !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		fields := []zap.Field{
			zap.String("method", method),
			zap.Duration("wait", wait),
			zap.Error(err),
		}
		if IsRateLimit(err) {
			c.log.Warn("rpc rate limited", fields...)
			return
		}
		c.log.Debug("rpc retry", fields...)
	}
	if err := backoff.RetryNotify(op, c.newBackOff(ctx), notify); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
