// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/poiesic/prodmatch/ai"
)

// Policy bounds a retry loop.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first one.
	MaxAttempts int
	// BaseDelay is the wait before the first retry. It doubles on every retry.
	BaseDelay time.Duration
	// MaxDelay caps every wait, including server supplied hints.
	// Zero keeps every wait at BaseDelay.
	MaxDelay time.Duration
}

// DefaultPolicy returns three attempts with delays of 1s and 2s, capped at 30s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Validate checks that the policy describes a finite, capped loop.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxAttempts, p.MaxAttempts)
	}
	if p.BaseDelay < 0 || p.MaxDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidDelay)
	}
	if p.MaxDelay > 0 && p.BaseDelay > p.MaxDelay {
		return fmt.Errorf("%w: base delay %s exceeds max delay %s", ErrInvalidDelay, p.BaseDelay, p.MaxDelay)
	}
	return nil
}

// Option configures a single Do call.
type Option func(*runner)

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRetryable replaces ai.IsRetryable as the retry predicate.
func WithRetryable(fn func(error) bool) Option {
	return func(r *runner) {
		if fn != nil {
			r.retryable = fn
		}
	}
}

// WithNotify registers a callback invoked before each wait with the failing
// error and the delay about to be slept.
func WithNotify(fn func(err error, delay time.Duration)) Option {
	return func(r *runner) {
		r.notify = fn
	}
}

type runner struct {
	logger    *slog.Logger
	retryable func(error) bool
	notify    func(error, time.Duration)
}

// Do calls op until it succeeds, returns a non-retryable error, exhausts
// policy.MaxAttempts, or ctx is done. The error of the last attempt is
// returned unwrapped; a cancelled context returns ctx.Err().
func Do(ctx context.Context, policy Policy, op func(ctx context.Context) error, opts ...Option) error {
	if err := policy.Validate(); err != nil {
		return err
	}

	r := &runner{
		logger:    slog.Default().With("component", "retry"),
		retryable: ai.IsRetryable,
	}
	for _, opt := range opts {
		opt(r)
	}

	var lastErr error
	attempt := 0
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempt++
		err := op(ctx)
		lastErr = err
		if err == nil {
			if attempt > 1 {
				r.logger.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if !r.retryable(err) {
			r.logger.Debug("operation failed with non-retryable error", "attempt", attempt, "err", err)
			return backoff.Permanent(err)
		}
		r.logger.Debug("operation failed, will retry", "attempt", attempt, "maxAttempts", policy.MaxAttempts, "err", err)
		return err
	}

	notify := func(err error, delay time.Duration) {
		if r.notify != nil {
			r.notify(err, delay)
		}
	}

	b := newBackOff(policy, &lastErr)
	bo := backoff.WithContext(backoff.WithMaxRetries(b, uint64(policy.MaxAttempts-1)), ctx)
	err := backoff.RetryNotify(operation, bo, notify)
	if err != nil && attempt == policy.MaxAttempts {
		r.logger.Warn("retries exhausted", "attempts", attempt, "err", err)
	}
	return err
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	var result T
	err := Do(ctx, policy, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	}, opts...)
	return result, err
}

// cappedBackOff doubles from BaseDelay, honors quota hints, never shrinks
// and never exceeds MaxDelay.
type cappedBackOff struct {
	exp     *backoff.ExponentialBackOff
	max     time.Duration
	last    time.Duration
	lastErr *error
}

func newBackOff(policy Policy, lastErr *error) *cappedBackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = policy.BaseDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = policy.MaxDelay
	if exp.MaxInterval == 0 {
		exp.MaxInterval = policy.BaseDelay
	}
	exp.MaxElapsedTime = 0
	exp.Reset()

	return &cappedBackOff{
		exp:     exp,
		max:     exp.MaxInterval,
		lastErr: lastErr,
	}
}

func (c *cappedBackOff) NextBackOff() time.Duration {
	d := c.exp.NextBackOff()
	if d == backoff.Stop {
		return backoff.Stop
	}
	if c.lastErr != nil {
		if hint := ai.RetryAfterHint(*c.lastErr); hint > d {
			d = hint
		}
	}
	if d > c.max {
		d = c.max
	}
	if d < c.last {
		d = c.last
	}
	c.last = d
	return d
}

func (c *cappedBackOff) Reset() {
	c.exp.Reset()
	c.last = 0
}
