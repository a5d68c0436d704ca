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

// Package retry runs operations against external services with a bounded,
// capped exponential backoff.
//
// Errors are retried only when ai.IsRetryable reports true; everything else
// stops the loop on the first failure. Quota errors may carry a server hint
// (ai.RetryAfterHint), which raises the next delay up to Policy.MaxDelay.
// Delays never decrease from one retry to the next and every wait is
// interrupted by context cancellation.
//
// Usage:
//
//	vectors, err := retry.Value(ctx, retry.DefaultPolicy(), func(ctx context.Context) ([][]float32, error) {
//		return embedder.EmbedTexts(ctx, batch)
//	})
package retry
