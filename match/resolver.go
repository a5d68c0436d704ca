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
	"errors"
	"log/slog"
	"sync"

	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/storage"
)

// Resolver maps datapoint identifiers to display names. Only successful
// lookups are memoized, so an entry imported after a miss is found on the
// next lookup.
type Resolver struct {
	store  storage.MetadataStore
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*string
}

// NewResolver creates a resolver over store.
func NewResolver(store storage.MetadataStore, logger *slog.Logger) (*Resolver, error) {
	if store == nil {
		return nil, ErrMetadataRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:  store,
		logger: logger.With("component", "resolver"),
		cache:  make(map[string]*string),
	}, nil
}

// Resolve returns the display name of id, or nil when the entry is missing
// or the lookup failed.
func (r *Resolver) Resolve(ctx context.Context, id string) *string {
	r.mu.RLock()
	name, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return name
	}

	longName, err := r.store.LongName(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		r.logger.Debug("datapoint has no metadata", "datapoint_id", id)
		return nil
	default:
		r.logger.Warn("metadata lookup failed", "datapoint_id", id, "err", err)
		return nil
	}

	name = &longName
	r.mu.Lock()
	r.cache[id] = name
	r.mu.Unlock()
	return name
}

// ResolveNeighbor attaches the display name of n.
func (r *Resolver) ResolveNeighbor(ctx context.Context, n core.Neighbor) core.ResolvedNeighbor {
	return core.Resolved(n, r.Resolve(ctx, n.DatapointID))
}

// ResolveAll resolves neighbors in order. No neighbor is dropped.
func (r *Resolver) ResolveAll(ctx context.Context, neighbors []core.Neighbor) []core.ResolvedNeighbor {
	out := make([]core.ResolvedNeighbor, len(neighbors))
	for i, n := range neighbors {
		out[i] = r.ResolveNeighbor(ctx, n)
	}
	return out
}

// Reset forgets every memoized name. Call it after the catalog changes.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*string)
}
