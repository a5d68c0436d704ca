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

import "errors"

var (
	// ErrInvalidBatchSize is returned when batch_size is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrInvalidRate is returned when max_calls_per_minute is not positive.
	ErrInvalidRate = errors.New("max calls per minute must be positive")

	// ErrInvalidThresholds is returned when thresholds are out of order for
	// the configured metric.
	ErrInvalidThresholds = errors.New("invalid classification thresholds")

	// ErrInvalidConfig is returned for any other configuration problem.
	ErrInvalidConfig = errors.New("invalid match configuration")

	// ErrEmbedderRequired is returned when the embedder is nil.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrReasonerRequired is returned when the reasoner is nil.
	ErrReasonerRequired = errors.New("reasoner is required")

	// ErrQuerierRequired is returned when the neighbor querier is nil.
	ErrQuerierRequired = errors.New("neighbor querier is required")

	// ErrMetadataRequired is returned when the metadata store is nil.
	ErrMetadataRequired = errors.New("metadata store is required")

	// ErrUnparseableDecision is logged when a reasoning reply cannot be
	// read as a decision object.
	ErrUnparseableDecision = errors.New("unparseable disambiguation reply")
)
