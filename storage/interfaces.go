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

package storage

import (
	"context"

	"github.com/poiesic/prodmatch/core"
)

// VectorIndex answers nearest-neighbor queries over catalog embeddings.
type VectorIndex interface {
	// FindNearest returns up to k catalog entries closest to vector, ranked
	// by ascending cosine distance (0 identical, 2 opposite).
	// Returns an empty slice when the index holds no entries.
	FindNearest(ctx context.Context, vector []float32, k int) ([]core.Neighbor, error)
}

// MetadataStore maps datapoint identifiers to display names.
type MetadataStore interface {
	// LongName returns the display name of a datapoint.
	// Returns ErrNotFound if the datapoint doesn't exist.
	LongName(ctx context.Context, datapointID string) (string, error)
}

// CatalogRepository provides operations for managing the internal product
// catalog. It serves both as the vector index and the metadata store.
type CatalogRepository interface {
	VectorIndex
	MetadataStore

	// AddEntries inserts or replaces catalog entries keyed by ID.
	// Sets InsertedAt on new entries and UpdatedAt on replaced ones.
	// Vectors are stored normalized to unit length.
	// Returns the entries with timestamps populated.
	AddEntries(ctx context.Context, entries ...*core.CatalogEntry) ([]*core.CatalogEntry, error)

	// GetEntry retrieves a single entry by datapoint identifier.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, datapointID string) (*core.CatalogEntry, error)

	// DeleteEntries removes entries by datapoint identifier.
	// Returns ErrNotFound if any entry doesn't exist.
	DeleteEntries(ctx context.Context, datapointIDs ...string) error

	// ForEach calls fn for every entry in datapoint identifier order.
	// Iteration stops at the first error returned by fn.
	ForEach(ctx context.Context, fn func(entry *core.CatalogEntry) error) error

	// Count returns the number of entries in the catalog.
	Count(ctx context.Context) (int, error)

	// Close closes the repository and releases resources.
	Close() error
}
