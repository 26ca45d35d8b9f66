// Package httpretry retries provider HTTP calls that fail with rate limits
// or server errors, using exponential backoff with jitter.
package httpretry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/custodia-labs/procdocs/internal/logger"
)

// Policy bounds the retry loop.
type Policy struct {
	// MaxAttempts includes the first attempt.
	MaxAttempts int

	// BaseDelay is the delay before the second attempt; it doubles each time.
	BaseDelay time.Duration

	// MaxDelay caps a single delay before jitter.
	MaxDelay time.Duration
}

// DefaultPolicy returns the policy used by the embedding and LLM adapters.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

// Retryable reports whether a response status warrants another attempt.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// statusError marks a response whose status is worth retrying.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("retryable status %d", e.status)
}

// Do sends the request built by newRequest until it succeeds, returns a
// non-retryable status, or the attempts run out. newRequest is called once
// per attempt so request bodies can be replayed.
//
// The last response is returned as-is, including a retryable status, so
// the caller can report the provider's error body.
func Do(
	ctx context.Context,
	client *http.Client,
	policy Policy,
	newRequest func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	b := &retryAfterBackOff{BackOff: policy.newBackOff()}
	var pending *http.Response

	operation := func() (*http.Response, error) {
		req, err := newRequest(ctx)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, fmt.Errorf("%s: %w", req.URL.Path, err)
		}
		if !Retryable(resp.StatusCode) {
			return resp, nil
		}
		pending = resp
		b.hint = retryAfter(resp)
		return resp, &statusError{status: resp.StatusCode}
	}

	notify := func(err error, wait time.Duration) {
		logger.Debug("Retrying in %s after %v", wait.Round(time.Millisecond), err)
		discard(pending)
		pending = nil
	}

	resp, err := backoff.RetryNotifyWithData(operation, backoff.WithContext(b, ctx), notify)
	var se *statusError
	switch {
	case err == nil:
		return resp, nil
	case errors.As(err, &se):
		return resp, nil
	default:
		discard(pending)
		return nil, err
	}
}

// newBackOff builds the exponential schedule for p.
func (p Policy) newBackOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.Multiplier = 2
	if p.MaxDelay > 0 {
		exp.MaxInterval = p.MaxDelay
	}
	exp.MaxElapsedTime = 0
	attempts := max(p.MaxAttempts, 1)
	return backoff.WithMaxRetries(exp, uint64(attempts-1))
}

// retryAfterBackOff waits at least as long as the server asked for.
type retryAfterBackOff struct {
	backoff.BackOff
	hint time.Duration
}

// NextBackOff returns the wrapped delay, raised to the pending Retry-After.
func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	hint := b.hint
	b.hint = 0
	if next == backoff.Stop {
		return next
	}
	return max(next, hint)
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func discard(resp *http.Response) {
	if resp == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
