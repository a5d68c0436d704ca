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

package core

import "fmt"

// OutcomeKind tags the variant held by a MatchOutcome.
type OutcomeKind int

const (
	// OutcomeMatched means a single catalog entry was accepted.
	OutcomeMatched OutcomeKind = iota + 1
	// OutcomeUncertain means candidates exist but none was accepted.
	OutcomeUncertain
	// OutcomeNoMatch means nothing usable was found, or processing failed.
	OutcomeNoMatch
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeMatched:
		return "matched"
	case OutcomeUncertain:
		return "uncertain"
	case OutcomeNoMatch:
		return "no_match"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// MatchOutcome is the per-item result of a matching run.
// Only the fields belonging to Kind are meaningful.
type MatchOutcome struct {
	Kind     OutcomeKind
	Uploaded string

	// Matched
	MatchedWith *ResolvedNeighbor
	Reason      string

	// Uncertain
	PossibleMatches []ResolvedNeighbor

	// NoMatch
	Error string
}

// Matched builds a Matched outcome.
func Matched(uploaded string, with ResolvedNeighbor, reason string) MatchOutcome {
	return MatchOutcome{Kind: OutcomeMatched, Uploaded: uploaded, MatchedWith: &with, Reason: reason}
}

// Uncertain builds an Uncertain outcome. The candidate slice is copied.
func Uncertain(uploaded string, candidates []ResolvedNeighbor) MatchOutcome {
	possible := make([]ResolvedNeighbor, len(candidates))
	copy(possible, candidates)
	return MatchOutcome{Kind: OutcomeUncertain, Uploaded: uploaded, PossibleMatches: possible}
}

// NoMatch builds a NoMatch outcome. A nil err means nothing was found.
func NoMatch(uploaded string, err error) MatchOutcome {
	o := MatchOutcome{Kind: OutcomeNoMatch, Uploaded: uploaded}
	if err != nil {
		o.Error = err.Error()
	}
	return o
}

// MatchedProduct is the JSON shape of a Matched outcome.
type MatchedProduct struct {
	Uploaded    string           `json:"uploaded"`
	MatchedWith ResolvedNeighbor `json:"matchedWith"`
	Reason      string           `json:"reason,omitempty"`
}

// UncertainMatch is the JSON shape of an Uncertain outcome.
type UncertainMatch struct {
	Uploaded        string             `json:"uploaded"`
	PossibleMatches []ResolvedNeighbor `json:"possibleMatches"`
}

// UnmatchedProduct is the JSON shape of a NoMatch outcome.
type UnmatchedProduct struct {
	Uploaded string `json:"uploaded"`
	Error    string `json:"error,omitempty"`
}

// MatchResult partitions all outcomes of a run by variant.
type MatchResult struct {
	MatchedProducts  []MatchedProduct   `json:"matchedProducts"`
	UncertainMatches []UncertainMatch   `json:"uncertainMatches"`
	NoMatches        []UnmatchedProduct `json:"noMatches"`
}

// NewMatchResult returns an empty result whose buckets marshal as [] rather than null.
func NewMatchResult() *MatchResult {
	return &MatchResult{
		MatchedProducts:  []MatchedProduct{},
		UncertainMatches: []UncertainMatch{},
		NoMatches:        []UnmatchedProduct{},
	}
}

// Add files an outcome into its bucket.
func (r *MatchResult) Add(o MatchOutcome) {
	switch o.Kind {
	case OutcomeMatched:
		r.MatchedProducts = append(r.MatchedProducts, MatchedProduct{
			Uploaded:    o.Uploaded,
			MatchedWith: *o.MatchedWith,
			Reason:      o.Reason,
		})
	case OutcomeUncertain:
		possible := o.PossibleMatches
		if possible == nil {
			possible = []ResolvedNeighbor{}
		}
		r.UncertainMatches = append(r.UncertainMatches, UncertainMatch{
			Uploaded:        o.Uploaded,
			PossibleMatches: possible,
		})
	default:
		r.NoMatches = append(r.NoMatches, UnmatchedProduct{
			Uploaded: o.Uploaded,
			Error:    o.Error,
		})
	}
}

// Len returns the total number of outcomes across all buckets.
func (r *MatchResult) Len() int {
	return len(r.MatchedProducts) + len(r.UncertainMatches) + len(r.NoMatches)
}

// CheckPartition verifies that the buckets hold exactly one outcome per input
// item, counting duplicates in the input as separate items.
func (r *MatchResult) CheckPartition(input []string) error {
	if r.Len() != len(input) {
		return fmt.Errorf("%w: %d outcomes for %d inputs", ErrIncompletePartition, r.Len(), len(input))
	}

	remaining := make(map[string]int, len(input))
	for _, s := range input {
		remaining[s]++
	}
	take := func(s string) error {
		if remaining[s] == 0 {
			return fmt.Errorf("%w: unexpected or repeated outcome for %q", ErrIncompletePartition, s)
		}
		remaining[s]--
		return nil
	}
	for _, m := range r.MatchedProducts {
		if err := take(m.Uploaded); err != nil {
			return err
		}
	}
	for _, u := range r.UncertainMatches {
		if err := take(u.Uploaded); err != nil {
			return err
		}
	}
	for _, n := range r.NoMatches {
		if err := take(n.Uploaded); err != nil {
			return err
		}
	}
	return nil
}
