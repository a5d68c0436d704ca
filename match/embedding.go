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
	"time"

	"github.com/poiesic/prodmatch/ai"
	"github.com/poiesic/prodmatch/retry"
)

// EmbeddingClient embeds batches with bounded retry.
type EmbeddingClient struct {
	embedder ai.Embedder
	policy   retry.Policy
	logger   *slog.Logger
}

// NewEmbeddingClient creates an embedding client. Transient and quota
// failures are retried according to policy; permanent ones are not.
func NewEmbeddingClient(embedder ai.Embedder, policy retry.Policy, logger *slog.Logger) (*EmbeddingClient, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingClient{
		embedder: embedder,
		policy:   policy,
		logger:   logger.With("component", "embedding-client"),
	}, nil
}

// Embed returns one vector per input string, in order. The returned error is
// the error of the last attempt.
func (c *EmbeddingClient) Embed(ctx context.Context, batch []string) ([][]float32, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	attempt := 0
	vectors, err := retry.Value(ctx, c.policy, func(ctx context.Context) ([][]float32, error) {
		attempt++
		vectors, err := c.embedder.EmbedTexts(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(batch) {
			return nil, &ai.ServiceError{
				Service: "embedding",
				Op:      "EmbedTexts",
				Kind:    ai.Permanent,
				Err:     fmt.Errorf("%w: expected %d, got %d", ai.ErrCountMismatch, len(batch), len(vectors)),
			}
		}
		return vectors, nil
	}, retry.WithLogger(c.logger), retry.WithNotify(func(err error, delay time.Duration) {
		c.logger.Warn("embedding failed, backing off", "attempt", attempt, "delay", delay, "quota", ai.IsQuota(err), "err", err)
	}))
	if err != nil {
		c.logger.Error("embedding batch failed", "items", len(batch), "attempts", attempt, "err", err)
		return nil, err
	}
	return vectors, nil
}
