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

package match

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Batch is a contiguous slice of the input.
type Batch struct {
	Index  int      // position of the batch in the run
	Offset int      // index of Items[0] in the input
	Items  []string // at most the configured batch size
}

// SplitBatches cuts items into contiguous batches of at most size elements,
// in order. An empty input yields no batches.
func SplitBatches(items []string, size int) ([]Batch, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, size)
	}

	batches := make([]Batch, 0, (len(items)+size-1)/size)
	for offset := 0; offset < len(items); offset += size {
		end := min(offset+size, len(items))
		batches = append(batches, Batch{
			Index:  len(batches),
			Offset: offset,
			Items:  items[offset:end:end],
		})
	}
	return batches, nil
}

// Queue is a FIFO of batches waiting to be dispatched.
type Queue struct {
	mu      sync.Mutex
	pending []Batch
}

// NewQueue returns a queue holding batches in order.
func NewQueue(batches []Batch) *Queue {
	q := &Queue{pending: make([]Batch, len(batches))}
	copy(q.pending, batches)
	return q
}

// Pop removes the next batch. ok is false when the queue is empty.
func (q *Queue) Pop() (b Batch, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return Batch{}, false
	}
	b = q.pending[0]
	q.pending = q.pending[1:]
	return b, true
}

// Len returns the number of pending batches.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain removes and returns every pending batch.
func (q *Queue) Drain() []Batch {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// Dispatcher starts queued batches one at a time, spacing the start of
// consecutive batches by at least Interval. The first batch starts
// immediately and nothing waits after the last one.
type Dispatcher struct {
	interval time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithClock replaces time.Now and the timer-based sleep. Intended for tests.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
		if sleep != nil {
			d.sleep = sleep
		}
	}
}

// WithDispatcherLogger sets a custom logger.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher returns a dispatcher allowing maxCallsPerMinute batch starts
// per minute, that is one every 60/maxCallsPerMinute seconds.
func NewDispatcher(maxCallsPerMinute int, opts ...DispatcherOption) (*Dispatcher, error) {
	if maxCallsPerMinute <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRate, maxCallsPerMinute)
	}
	d := &Dispatcher{
		interval: time.Minute / time.Duration(maxCallsPerMinute),
		now:      time.Now,
		sleep:    sleepContext,
		logger:   slog.Default().With("component", "dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Interval returns the minimum spacing between batch starts.
func (d *Dispatcher) Interval() time.Duration {
	return d.interval
}

// Run pops batches from q and calls fn for each, synchronously. It returns
// the number of batches started. When ctx is done Run stops before starting
// another batch and returns ctx.Err(); unstarted batches stay in q.
func (d *Dispatcher) Run(ctx context.Context, q *Queue, fn func(ctx context.Context, b Batch)) (int, error) {
	started := 0
	var lastStart time.Time
	for {
		if err := ctx.Err(); err != nil {
			return started, err
		}
		if q.Len() == 0 {
			return started, nil
		}

		if started > 0 {
			if wait := d.interval - d.now().Sub(lastStart); wait > 0 {
				d.logger.Debug("throttling before next batch", "wait", wait)
				if err := d.sleep(ctx, wait); err != nil {
					return started, err
				}
			}
		}

		b, ok := q.Pop()
		if !ok {
			return started, nil
		}
		lastStart = d.now()
		started++
		fn(ctx, b)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
