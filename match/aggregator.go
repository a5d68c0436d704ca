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
	"sync"

	"github.com/poiesic/prodmatch/core"
)

// Aggregator collects outcomes from concurrent workers into a MatchResult.
type Aggregator struct {
	mu     sync.Mutex
	result *core.MatchResult
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{result: core.NewMatchResult()}
}

// Add files one outcome.
func (a *Aggregator) Add(o core.MatchOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.Add(o)
}

// FailBatch files a NoMatch carrying err for every item.
func (a *Aggregator) FailBatch(items []string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, item := range items {
		a.result.Add(core.NoMatch(item, err))
	}
}

// Len returns the number of outcomes filed so far.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result.Len()
}

// Result returns the collected result. The aggregator must not be used
// afterwards.
func (a *Aggregator) Result() *core.MatchResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}
