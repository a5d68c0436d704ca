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
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/poiesic/prodmatch/retry"
)

// Metric says how to read neighbor scores.
type Metric string

const (
	// MetricDistance treats scores as cosine distance; lower is closer.
	MetricDistance Metric = "distance"
	// MetricSimilarity treats scores as similarity; higher is closer.
	MetricSimilarity Metric = "similarity"
)

// Config holds tunable pipeline settings.
type Config struct {
	// BatchSize and MaxCallsPerMinute are the defaults used by callers that
	// do not pass their own values to Match.
	BatchSize         int
	MaxCallsPerMinute int

	// Embedding retry policy.
	MaxAttempts    int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// NeighborCount is the number of neighbors requested per query vector.
	NeighborCount int

	Metric             Metric
	ConfidentThreshold float32
	UncertainThreshold float32

	// MaxCandidates caps the semi-confident set handed to disambiguation
	// and reported as possible matches.
	MaxCandidates int

	// Workers bounds concurrent per-item classification within a batch.
	Workers int

	// Disambiguate enables the reasoning step for semi-confident sets.
	Disambiguate bool
}

// DefaultConfig returns the defaults: batches of 50 at 60 per minute, three
// embedding attempts, five neighbors, distance thresholds 0.1 and 0.3 and at
// most five candidates.
func DefaultConfig() *Config {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return &Config{
		BatchSize:          50,
		MaxCallsPerMinute:  60,
		MaxAttempts:        3,
		RetryBaseDelay:     time.Second,
		RetryMaxDelay:      30 * time.Second,
		NeighborCount:      5,
		Metric:             MetricDistance,
		ConfidentThreshold: 0.1,
		UncertainThreshold: 0.3,
		MaxCandidates:      5,
		Workers:            workers,
		Disambiguate:       true,
	}
}

// Normalize fills derived defaults.
func (c *Config) Normalize() {
	c.Metric = Metric(strings.ToLower(strings.TrimSpace(string(c.Metric))))
	if c.Metric == "" {
		c.Metric = MetricDistance
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidBatchSize, c.BatchSize)
	}
	if c.MaxCallsPerMinute <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidRate, c.MaxCallsPerMinute)
	}
	if err := c.RetryPolicy().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.NeighborCount <= 0 {
		return fmt.Errorf("%w: NeighborCount must be positive", ErrInvalidConfig)
	}
	if c.MaxCandidates <= 0 {
		return fmt.Errorf("%w: MaxCandidates must be positive", ErrInvalidConfig)
	}

	switch c.Metric {
	case MetricDistance:
		if c.ConfidentThreshold < 0 || c.ConfidentThreshold > c.UncertainThreshold {
			return fmt.Errorf("%w: distance needs 0 <= confident (%g) <= uncertain (%g)",
				ErrInvalidThresholds, c.ConfidentThreshold, c.UncertainThreshold)
		}
	case MetricSimilarity:
		if c.UncertainThreshold > c.ConfidentThreshold {
			return fmt.Errorf("%w: similarity needs uncertain (%g) <= confident (%g)",
				ErrInvalidThresholds, c.UncertainThreshold, c.ConfidentThreshold)
		}
	default:
		return fmt.Errorf("%w: unknown Metric %q", ErrInvalidConfig, c.Metric)
	}
	return nil
}

// RetryPolicy returns the embedding retry policy.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.MaxAttempts,
		BaseDelay:   c.RetryBaseDelay,
		MaxDelay:    c.RetryMaxDelay,
	}
}
