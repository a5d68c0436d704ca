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

	"github.com/poiesic/prodmatch/core"
)

// Tier is the confidence band of a neighbor list.
type Tier int

const (
	TierNone Tier = iota
	TierSemiConfident
	TierConfident
)

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierSemiConfident:
		return "semi-confident"
	case TierConfident:
		return "confident"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Classification is the result of applying the thresholds to one neighbor
// list. Best is set for TierConfident; Candidates holds the capped
// semi-confident set for TierSemiConfident.
type Classification struct {
	Tier       Tier
	Best       *core.Neighbor
	Candidates []core.Neighbor
}

// Classifier partitions ranked neighbor lists by score.
type Classifier struct {
	metric        Metric
	confident     float32
	uncertain     float32
	maxCandidates int
}

// NewClassifier builds a classifier from the metric, thresholds and
// candidate cap of config.
func NewClassifier(config *Config) (*Classifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{
		metric:        config.Metric,
		confident:     config.ConfidentThreshold,
		uncertain:     config.UncertainThreshold,
		maxCandidates: config.MaxCandidates,
	}, nil
}

// TierOf returns the band of a single score.
func (c *Classifier) TierOf(score float32) Tier {
	if c.metric == MetricSimilarity {
		switch {
		case score >= c.confident:
			return TierConfident
		case score >= c.uncertain:
			return TierSemiConfident
		default:
			return TierNone
		}
	}
	switch {
	case score <= c.confident:
		return TierConfident
	case score <= c.uncertain:
		return TierSemiConfident
	default:
		return TierNone
	}
}

// Classify applies the thresholds to neighbors, which must be in the index's
// ranked order. The first confident neighbor wins; otherwise the
// semi-confident neighbors are returned in ranked order, capped.
func (c *Classifier) Classify(neighbors []core.Neighbor) Classification {
	var candidates []core.Neighbor
	for i := range neighbors {
		switch c.TierOf(neighbors[i].Score) {
		case TierConfident:
			best := neighbors[i]
			return Classification{Tier: TierConfident, Best: &best}
		case TierSemiConfident:
			if len(candidates) < c.maxCandidates {
				candidates = append(candidates, neighbors[i])
			}
		}
	}
	if len(candidates) > 0 {
		return Classification{Tier: TierSemiConfident, Candidates: candidates}
	}
	return Classification{Tier: TierNone}
}
