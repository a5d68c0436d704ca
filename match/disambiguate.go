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
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/poiesic/prodmatch/ai"
	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/retry"
)

const disambiguationSystemPrompt = `You compare an uploaded product name with a short list of catalog products and decide whether exactly one of them is the same product.

Declare a match only when ALL of these agree exactly between the uploaded name and the candidate:
- size or quantity (volume, weight, count, pack size), after normalizing units such as "20oz" and "20 oz"
- flavor or variant (for example diet, zero sugar, original, lemon)
- brand
- product line

Abbreviations, word order, letter case and punctuation do not matter. If any attribute is missing from one side, conflicts, or you are unsure, do not declare a match. Never pick more than one candidate.

Reply with a single JSON object and nothing else:
{"is_confident": true or false, "matched_datapoint_id": "<datapoint_id of the matching candidate, or null>", "reason": "<one short sentence>"}`

// Decision is an accepted disambiguation.
type Decision struct {
	Match  core.ResolvedNeighbor
	Reason string
}

// reply is the JSON object expected from the reasoning model.
type reply struct {
	IsConfident        bool            `json:"is_confident"`
	MatchedDatapointID json.RawMessage `json:"matched_datapoint_id"`
	Reason             string          `json:"reason"`
}

// Disambiguator escalates semi-confident candidate sets to a reasoning model.
type Disambiguator struct {
	reasoner ai.Reasoner
	policy   retry.Policy
	logger   *slog.Logger
}

// NewDisambiguator creates a disambiguation step. Reasoning calls are retried
// with policy like embedding calls.
func NewDisambiguator(reasoner ai.Reasoner, policy retry.Policy, logger *slog.Logger) (*Disambiguator, error) {
	if reasoner == nil {
		return nil, ErrReasonerRequired
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Disambiguator{
		reasoner: reasoner,
		policy:   policy,
		logger:   logger.With("component", "disambiguator"),
	}, nil
}

// Disambiguate asks the reasoning model whether uploaded is one of
// candidates. It returns a Decision only when the model is confident and
// names one of the supplied candidates. A nil Decision with a nil error means
// the model declined or replied with something unusable. A non-nil error
// means the reasoning service itself failed.
func (d *Disambiguator) Disambiguate(ctx context.Context, uploaded string, candidates []core.ResolvedNeighbor) (*Decision, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	prompt := buildDisambiguationPrompt(uploaded, candidates)
	raw, err := retry.Value(ctx, d.policy, func(ctx context.Context) (string, error) {
		return d.reasoner.Reason(ctx, disambiguationSystemPrompt, prompt)
	}, retry.WithLogger(d.logger))
	if err != nil {
		return nil, err
	}

	parsed, err := parseReply(raw)
	if err != nil {
		d.logger.Warn("classification failure: could not parse reasoning reply",
			"product", uploaded, "reply", truncate(raw, 200),
			"salvaged_reason", salvagedReason(raw), "err", err)
		return nil, nil
	}
	if !parsed.IsConfident {
		d.logger.Debug("reasoning model not confident", "product", uploaded, "reason", parsed.Reason)
		return nil, nil
	}

	id := datapointID(parsed.MatchedDatapointID)
	for _, c := range candidates {
		if c.DatapointID == id {
			return &Decision{Match: c, Reason: parsed.Reason}, nil
		}
	}

	d.logger.Warn("classification failure: reasoning model picked an unknown candidate",
		"product", uploaded, "matched_datapoint_id", id)
	return nil, nil
}

func buildDisambiguationPrompt(uploaded string, candidates []core.ResolvedNeighbor) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Uploaded product: %q\n\nCandidates:\n", uploaded)
	for _, c := range candidates {
		name := "(name unavailable)"
		if c.LongName != nil {
			name = fmt.Sprintf("%q", *c.LongName)
		}
		fmt.Fprintf(&sb, "- datapoint_id: %q, name: %s\n", c.DatapointID, name)
	}
	return sb.String()
}

// parseReply extracts the first JSON object from raw. Malformed JSON is
// never repaired into a decision: any syntax or type error yields
// ErrUnparseableDecision.
func parseReply(raw string) (*reply, error) {
	candidate := extractJSON(raw)
	if candidate == "" {
		return nil, fmt.Errorf("%w: no JSON object found", ErrUnparseableDecision)
	}

	var r reply
	if err := json.Unmarshal([]byte(candidate), &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparseableDecision, err)
	}
	return &r, nil
}

// salvagedReason repairs a malformed reply only to recover the model's
// stated reason for the failure log. The result never drives a decision.
func salvagedReason(raw string) string {
	candidate := extractJSON(raw)
	if candidate == "" {
		return ""
	}
	fixed, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return ""
	}
	var r reply
	if err := json.Unmarshal([]byte(fixed), &r); err != nil {
		return ""
	}
	return r.Reason
}

// extractJSON returns the first balanced {...} block of s with markdown
// fences removed, or "" when there is none. An unbalanced tail is returned
// as is and fails to parse.
func extractJSON(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, fence := range []string{"```json", "```"} {
		s = strings.ReplaceAll(s, fence, "")
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return strings.TrimSpace(s[start:])
}

// datapointID reads matched_datapoint_id whether the model sent a string,
// a number or null.
func datapointID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
