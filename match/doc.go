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

// Package match implements the batch product matching pipeline.
//
// A Matcher turns a list of external product names into a core.MatchResult
// with three buckets: matched, uncertain and unmatched. Each run flows
// through these stages:
//
//  1. SplitBatches cuts the input into contiguous batches of at most
//     batch_size names, and a Dispatcher starts them one at a time, no
//     closer together than 60/max_calls_per_minute seconds.
//  2. EmbeddingClient embeds a batch with bounded, capped retry.
//  3. A NeighborQuerier returns ranked catalog neighbors per vector.
//  4. Classifier sorts each neighbor list into confident, semi-confident or
//     none using two thresholds.
//  5. Disambiguator asks a reasoning model to pick at most one of the
//     semi-confident candidates.
//  6. Resolver attaches catalog display names.
//  7. Aggregator files every outcome into exactly one bucket.
//
// Failures are contained: a batch that cannot be embedded or queried turns
// into NoMatch outcomes carrying the error, and the run moves on. Every
// input name appears exactly once in the result, even when the run is
// cancelled part way through.
//
// # Scores
//
// With MetricDistance (the default) lower scores are better:
//
//	confident       d <= ConfidentThreshold
//	semi-confident  ConfidentThreshold < d <= UncertainThreshold
//	excluded        d > UncertainThreshold
//
// With MetricSimilarity higher scores are better and the comparisons flip.
//
// # Usage
//
//	m, err := match.NewMatcher(provider.Embedder(), provider.Reasoner(), nq, repo, match.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer m.Release()
//
//	result, err := m.Match(ctx, products, 50, 60)
package match
