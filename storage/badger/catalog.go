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

package badger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/storage"
)

// CatalogRepository implements storage.CatalogRepository using BadgerDB.
// Nearest-neighbor queries scan every entry and rank by cosine distance.
type CatalogRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a catalog repository on top of backend.
// Returns storage.CatalogRepository interface to enforce abstraction.
func NewCatalogRepository(backend *Backend) (storage.CatalogRepository, error) {
	if backend == nil {
		return nil, errors.New("badger: backend is required")
	}
	return &CatalogRepository{
		backend: backend,
		logger:  slog.Default().With("component", "badger-catalog"),
	}, nil
}

// Close releases resources. The backend is owned by the caller.
func (r *CatalogRepository) Close() error {
	return nil
}

// AddEntries inserts or replaces catalog entries.
func (r *CatalogRepository) AddEntries(ctx context.Context, entries ...*core.CatalogEntry) ([]*core.CatalogEntry, error) {
	for _, entry := range entries {
		if err := core.ValidateCatalogEntry(entry); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Stored timestamps have microsecond resolution.
		now := time.Now().UTC().Truncate(time.Microsecond)
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := makeCatalogEntryKey(entry.ID)

			old, err := readEntry(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				entry.InsertedAt = old.InsertedAt
				entry.UpdatedAt = now
			} else {
				if entry.InsertedAt.IsZero() {
					entry.InsertedAt = now
				}
				entry.InsertedAt = entry.InsertedAt.UTC().Truncate(time.Microsecond)
				entry.UpdatedAt = entry.InsertedAt
			}
			entry.Vector = storage.NormalizeVector(entry.Vector)

			if err := tx.Set(key, storage.MarshalCatalogEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("stored catalog entries", "count", len(entries))
	return entries, nil
}

// GetEntry retrieves a single entry by datapoint identifier.
func (r *CatalogRepository) GetEntry(ctx context.Context, datapointID string) (*core.CatalogEntry, error) {
	var result *core.CatalogEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntry(tx, makeCatalogEntryKey(datapointID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// LongName returns the display name for a datapoint.
func (r *CatalogRepository) LongName(ctx context.Context, datapointID string) (string, error) {
	entry, err := r.GetEntry(ctx, datapointID)
	if err != nil {
		return "", err
	}
	return entry.LongName, nil
}

// DeleteEntries removes entries by datapoint identifier.
func (r *CatalogRepository) DeleteEntries(ctx context.Context, datapointIDs ...string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range datapointIDs {
			key := makeCatalogEntryKey(id)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// ForEach calls fn for every entry in key order.
func (r *CatalogRepository) ForEach(ctx context.Context, fn func(entry *core.CatalogEntry) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		return scanEntries(ctx, tx, fn)
	}, false)
}

// Count returns the number of catalog entries.
func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = catalogScanPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// FindNearest ranks every stored entry by cosine distance to vector and
// returns the k closest. Ties are broken by datapoint identifier.
func (r *CatalogRepository) FindNearest(ctx context.Context, vector []float32, k int) ([]core.Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", storage.ErrInvalidQuery, k)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", storage.ErrInvalidQuery)
	}
	query := storage.NormalizeVector(vector)

	results := make([]core.Neighbor, 0, k+1)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanEntries(ctx, tx, func(entry *core.CatalogEntry) error {
			if len(entry.Vector) == 0 {
				return nil
			}
			if len(entry.Vector) != len(query) {
				return fmt.Errorf("%w: query has %d dimensions, entry %s has %d",
					storage.ErrDimensionMismatch, len(query), entry.ID, len(entry.Vector))
			}
			n := core.Neighbor{
				DatapointID: entry.ID,
				Score:       storage.CosineDistance(query, entry.Vector),
			}
			// Keep results sorted and no longer than k.
			i, _ := slices.BinarySearchFunc(results, n, compareNeighbors)
			if i >= k {
				return nil
			}
			results = slices.Insert(results, i, n)
			if len(results) > k {
				results = results[:k]
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func compareNeighbors(a, b core.Neighbor) int {
	if c := cmp.Compare(a.Score, b.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.DatapointID, b.DatapointID)
}

// scanEntries iterates every catalog entry under the scan prefix.
func scanEntries(ctx context.Context, tx *badger.Txn, fn func(*core.CatalogEntry) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = catalogScanPrefix()
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var entry *core.CatalogEntry
		err := iter.Item().Value(func(val []byte) error {
			var err error
			entry, err = storage.UnmarshalCatalogEntry(val)
			return err
		})
		if err != nil {
			return err
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}

// readEntry reads an entry by key. Returns nil without error when missing.
func readEntry(tx *badger.Txn, key []byte) (*core.CatalogEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var entry *core.CatalogEntry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalCatalogEntry(val)
		return err
	})
	return entry, err
}
