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

package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/prodmatch/ai"
	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/match"
	"github.com/poiesic/prodmatch/progress"
	"github.com/poiesic/prodmatch/retry"
	"github.com/poiesic/prodmatch/storage"
)

// ImportStats summarizes an import.
type ImportStats struct {
	Rows     int // rows read from the source
	Skipped  int // rows without a LONG_NAME
	Imported int // entries written to the repository
	Failed   int // rows whose batch could not be embedded
}

// Importer embeds catalog rows and writes them to a repository.
type Importer struct {
	repo         storage.CatalogRepository
	embedder     ai.Embedder
	batchSize    int
	rate         int
	policy       retry.Policy
	progress     io.Writer
	dispatchOpts []match.DispatcherOption
	logger       *slog.Logger
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer) error

// WithBatchSize sets the number of rows embedded per call.
// Default is 50.
func WithBatchSize(size int) ImporterOption {
	return func(i *Importer) error {
		if size <= 0 {
			return fmt.Errorf("%w: got %d", match.ErrInvalidBatchSize, size)
		}
		i.batchSize = size
		return nil
	}
}

// WithRate sets the maximum number of embedding calls per minute.
// Default is 60.
func WithRate(maxCallsPerMinute int) ImporterOption {
	return func(i *Importer) error {
		if maxCallsPerMinute <= 0 {
			return fmt.Errorf("%w: got %d", match.ErrInvalidRate, maxCallsPerMinute)
		}
		i.rate = maxCallsPerMinute
		return nil
	}
}

// WithRetryPolicy sets the embedding retry policy.
// Default is retry.DefaultPolicy().
func WithRetryPolicy(policy retry.Policy) ImporterOption {
	return func(i *Importer) error {
		if err := policy.Validate(); err != nil {
			return err
		}
		i.policy = policy
		return nil
	}
}

// WithProgress reports import progress to w.
func WithProgress(w io.Writer) ImporterOption {
	return func(i *Importer) error {
		i.progress = w
		return nil
	}
}

// WithDispatcherOptions passes options to the import dispatcher.
func WithDispatcherOptions(opts ...match.DispatcherOption) ImporterOption {
	return func(i *Importer) error {
		i.dispatchOpts = append(i.dispatchOpts, opts...)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ImporterOption {
	return func(i *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// NewImporter creates an importer writing to repo.
func NewImporter(repo storage.CatalogRepository, embedder ai.Embedder, opts ...ImporterOption) (*Importer, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, match.ErrEmbedderRequired
	}

	i := &Importer{
		repo:      repo,
		embedder:  embedder,
		batchSize: 50,
		rate:      60,
		policy:    retry.DefaultPolicy(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	i.logger = i.logger.With("component", "catalog-importer")
	return i, nil
}

// ImportFile reads a source table and imports it.
func (i *Importer) ImportFile(ctx context.Context, filename string, r io.Reader) (ImportStats, error) {
	rows, err := ReadRows(filename, r)
	if err != nil {
		return ImportStats{}, err
	}
	return i.Import(ctx, rows)
}

// Import embeds the LONG_NAME of every row and upserts the entries.
//
// A batch whose embedding fails after all retries is logged and counted in
// Failed, and the import continues. A repository failure or cancellation
// stops the import and is returned along with the stats so far.
func (i *Importer) Import(ctx context.Context, rows []Row) (ImportStats, error) {
	stats := ImportStats{Rows: len(rows)}

	usable := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.LongName == "" {
			stats.Skipped++
			continue
		}
		usable = append(usable, row)
	}
	if stats.Skipped > 0 {
		i.logger.Info("skipping rows without LONG_NAME", "count", stats.Skipped)
	}

	texts := make([]string, len(usable))
	for idx, row := range usable {
		texts[idx] = row.LongName
	}
	batches, err := match.SplitBatches(texts, i.batchSize)
	if err != nil {
		return stats, err
	}

	embedding, err := match.NewEmbeddingClient(i.embedder, i.policy, i.logger)
	if err != nil {
		return stats, err
	}
	dispatcher, err := match.NewDispatcher(i.rate, i.dispatchOpts...)
	if err != nil {
		return stats, err
	}

	var tracker *progress.Tracker
	if i.progress != nil {
		tracker = progress.NewTracker(i.progress, "Importing", len(usable), 1)
		tracker.SetUnit("rows")
		tracker.Start()
		defer tracker.Finish()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The dispatcher runs batches on this goroutine, so stats needs no lock.
	var storeErr error
	_, runErr := dispatcher.Run(runCtx, match.NewQueue(batches), func(ctx context.Context, b match.Batch) {
		vectors, err := embedding.Embed(ctx, b.Items)
		if err != nil {
			i.logger.Error("failed to embed catalog batch", "batch", b.Index, "items", len(b.Items), "err", err)
			stats.Failed += len(b.Items)
			if tracker != nil {
				tracker.Increment(len(b.Items), len(b.Items))
			}
			return
		}

		entries := make([]*core.CatalogEntry, len(b.Items))
		for j, vector := range vectors {
			row := usable[b.Offset+j]
			entries[j] = &core.CatalogEntry{
				ID:       row.ID(),
				Name:     row.Name,
				LongName: row.LongName,
				Vector:   vector,
			}
		}
		if _, err := i.repo.AddEntries(ctx, entries...); err != nil {
			storeErr = fmt.Errorf("store batch %d: %w", b.Index, err)
			cancel()
			return
		}
		stats.Imported += len(entries)
		if tracker != nil {
			tracker.Increment(len(b.Items), 0)
		}
	})

	if storeErr != nil {
		return stats, storeErr
	}
	if runErr != nil {
		return stats, runErr
	}

	i.logger.Info("catalog import complete",
		"rows", stats.Rows, "imported", stats.Imported, "skipped", stats.Skipped, "failed", stats.Failed)
	return stats, nil
}
