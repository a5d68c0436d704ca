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

package neighbors

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/storage"
)

// Client submits query vectors to a storage.VectorIndex.
type Client struct {
	index  storage.VectorIndex
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates a new neighbor query client.
func NewClient(index storage.VectorIndex, opts ...Option) (*Client, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}

	c := &Client{
		index:  index,
		logger: slog.Default().With("component", "neighbors"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Query returns up to k neighbors for each vector, aligned by position with
// vectors. Each list keeps the index's ranking.
func (c *Client) Query(ctx context.Context, vectors [][]float32, k int) ([][]core.Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidNeighborCount, k)
	}

	results := make([][]core.Neighbor, len(vectors))
	for i, vector := range vectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		found, err := c.index.FindNearest(ctx, vector, k)
		if err != nil {
			c.logger.Error("error querying nearest neighbors", "vector", i, "err", err)
			return nil, fmt.Errorf("neighbor query for vector %d: %w", i, err)
		}
		if len(found) > k {
			found = found[:k]
		}
		results[i] = found
	}

	c.logger.Debug("neighbor query complete", "vectors", len(vectors), "k", k)
	return results, nil
}
