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

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/prodmatch/ai"
	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/storage"
)

// NeighborQuerier returns one ranked neighbor list per vector, aligned by
// position. neighbors.Client implements it.
type NeighborQuerier interface {
	Query(ctx context.Context, vectors [][]float32, k int) ([][]core.Neighbor, error)
}

// Matcher runs the matching pipeline. It is safe for concurrent use by
// independent runs; each run gets its own queue, dispatcher and aggregator.
type Matcher struct {
	embedding     *EmbeddingClient
	querier       NeighborQuerier
	classifier    *Classifier
	disambiguator *Disambiguator
	resolver      *Resolver
	config        *Config
	pool          *ants.Pool
	dispatchOpts  []DispatcherOption
	logger        *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithPoolSize sets the number of workers classifying items concurrently.
// Default is Config.Workers.
func WithPoolSize(size int) Option {
	return func(m *Matcher) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if m.pool != nil {
			m.pool.Release()
		}
		m.pool = pool
		return nil
	}
}

// WithDispatcherOptions passes options to the dispatcher of every run.
func WithDispatcherOptions(opts ...DispatcherOption) Option {
	return func(m *Matcher) error {
		m.dispatchOpts = append(m.dispatchOpts, opts...)
		return nil
	}
}

// WithResolver shares an existing resolver, and its name cache, with the
// matcher.
func WithResolver(resolver *Resolver) Option {
	return func(m *Matcher) error {
		if resolver != nil {
			m.resolver = resolver
		}
		return nil
	}
}

// NewMatcher creates a matcher. reasoner may be nil only when
// config.Disambiguate is false.
func NewMatcher(
	embedder ai.Embedder,
	reasoner ai.Reasoner,
	querier NeighborQuerier,
	metadata storage.MetadataStore,
	config *Config,
	opts ...Option,
) (*Matcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if querier == nil {
		return nil, ErrQuerierRequired
	}
	if config.Disambiguate && reasoner == nil {
		return nil, ErrReasonerRequired
	}

	m := &Matcher{
		querier: querier,
		config:  config,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			m.Release()
			return nil, err
		}
	}
	m.logger = m.logger.With("component", "matcher")

	var err error
	if m.embedding, err = NewEmbeddingClient(embedder, config.RetryPolicy(), m.logger); err != nil {
		m.Release()
		return nil, err
	}
	if m.classifier, err = NewClassifier(config); err != nil {
		m.Release()
		return nil, err
	}
	if config.Disambiguate {
		if m.disambiguator, err = NewDisambiguator(reasoner, config.RetryPolicy(), m.logger); err != nil {
			m.Release()
			return nil, err
		}
	}
	if m.resolver == nil {
		if m.resolver, err = NewResolver(metadata, m.logger); err != nil {
			m.Release()
			return nil, err
		}
	}
	if m.pool == nil {
		if m.pool, err = ants.NewPool(config.Workers); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Resolver returns the matcher's metadata resolver.
func (m *Matcher) Resolver() *Resolver {
	return m.resolver
}

// Config returns the matcher's configuration.
func (m *Matcher) Config() Config {
	return *m.config
}

// Release releases the worker pool. The matcher should not be used after
// calling Release.
func (m *Matcher) Release() {
	if m.pool != nil {
		m.pool.Release()
	}
}

// Match partitions products into matched, uncertain and unmatched buckets.
// See MatchWithMonitor.
func (m *Matcher) Match(ctx context.Context, products []string, batchSize, maxCallsPerMinute int) (*core.MatchResult, error) {
	return m.MatchWithMonitor(ctx, products, batchSize, maxCallsPerMinute, nil)
}

// MatchWithMonitor runs the pipeline and reports progress to monitor.
//
// Invalid arguments are rejected before any work with a nil result. Once the
// run starts, the returned result always holds exactly one outcome per
// product. When ctx is done, batches not yet started become NoMatch outcomes
// carrying the cancellation, and the result is returned together with
// ctx.Err().
func (m *Matcher) MatchWithMonitor(ctx context.Context, products []string, batchSize, maxCallsPerMinute int, monitor Monitor) (*core.MatchResult, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	if maxCallsPerMinute <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRate, maxCallsPerMinute)
	}
	if err := core.ValidateProducts(products); err != nil {
		return nil, err
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	batches, err := SplitBatches(products, batchSize)
	if err != nil {
		return nil, err
	}
	dispatcher, err := NewDispatcher(maxCallsPerMinute, m.dispatchOpts...)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := m.logger.With("run_id", runID)
	logger.Info("starting match run", "items", len(products), "batches", len(batches),
		"batch_size", batchSize, "interval", dispatcher.Interval())
	monitor.Start(runID, len(products), len(batches))

	agg := NewAggregator()
	queue := NewQueue(batches)
	_, runErr := dispatcher.Run(ctx, queue, func(ctx context.Context, b Batch) {
		monitor.BatchStarted(b)
		outcomes, err := m.processBatch(ctx, logger, b)
		if err != nil {
			logger.Error("batch failed", "batch", b.Index, "items", len(b.Items), "err", err)
			agg.FailBatch(b.Items, err)
			monitor.BatchFailed(b, err)
			return
		}
		for _, o := range outcomes {
			agg.Add(o)
		}
		monitor.BatchDone(b, outcomes)
	})

	if runErr != nil {
		for _, b := range queue.Drain() {
			err := fmt.Errorf("run cancelled before batch %d: %w", b.Index, runErr)
			agg.FailBatch(b.Items, err)
			monitor.BatchFailed(b, err)
		}
		logger.Warn("match run cancelled", "err", runErr)
	}

	return finishRun(logger, monitor, products, agg.Result(), runErr)
}

// finishRun checks that result partitions products and reports it to
// monitor. The monitor is finished on every path.
func finishRun(logger *slog.Logger, monitor Monitor, products []string, result *core.MatchResult, runErr error) (*core.MatchResult, error) {
	defer monitor.Finish(result)

	if err := result.CheckPartition(products); err != nil {
		logger.Error("match result is not a partition of the input", "err", err)
		return result, err
	}

	logger.Info("match run complete",
		"matched", len(result.MatchedProducts),
		"uncertain", len(result.UncertainMatches),
		"unmatched", len(result.NoMatches))
	return result, runErr
}

// processBatch embeds and queries one batch, then classifies its items on
// the worker pool. Outcomes are returned in input order. An error means the
// whole batch failed and no outcome was produced.
func (m *Matcher) processBatch(ctx context.Context, logger *slog.Logger, b Batch) ([]core.MatchOutcome, error) {
	vectors, err := m.embedding.Embed(ctx, b.Items)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}

	lists, err := m.querier.Query(ctx, vectors, m.config.NeighborCount)
	if err != nil {
		return nil, fmt.Errorf("neighbor query failed: %w", err)
	}
	if len(lists) != len(b.Items) {
		return nil, fmt.Errorf("neighbor query failed: %d lists for %d items", len(lists), len(b.Items))
	}

	outcomes := make([]core.MatchOutcome, len(b.Items))
	var wg sync.WaitGroup
	for i, item := range b.Items {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic while classifying item", "product", item, "panic", r)
					outcomes[i] = core.NoMatch(item, fmt.Errorf("internal error: %v", r))
				}
			}()
			outcomes[i] = m.classifyItem(ctx, logger, item, lists[i])
		}
		if err := m.pool.Submit(task); err != nil {
			logger.Debug("worker pool unavailable, classifying inline", "err", err)
			task()
		}
	}
	wg.Wait()

	logger.Debug("batch complete", "batch", b.Index, "items", len(b.Items))
	return outcomes, nil
}

func (m *Matcher) classifyItem(ctx context.Context, logger *slog.Logger, uploaded string, neighbors []core.Neighbor) core.MatchOutcome {
	c := m.classifier.Classify(neighbors)

	switch c.Tier {
	case TierConfident:
		return core.Matched(uploaded, m.resolver.ResolveNeighbor(ctx, *c.Best), "")

	case TierSemiConfident:
		candidates := m.resolver.ResolveAll(ctx, c.Candidates)
		if m.disambiguator == nil {
			return core.Uncertain(uploaded, candidates)
		}
		decision, err := m.disambiguator.Disambiguate(ctx, uploaded, candidates)
		if err != nil {
			logger.Warn("disambiguation unavailable, keeping candidates", "product", uploaded, "err", err)
			return core.Uncertain(uploaded, candidates)
		}
		if decision == nil {
			return core.Uncertain(uploaded, candidates)
		}
		return core.Matched(uploaded, decision.Match, decision.Reason)

	default:
		return core.NoMatch(uploaded, nil)
	}
}
