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

import "github.com/poiesic/prodmatch/core"

// Monitor receives callbacks at each stage of a matching run.
// Callbacks for one run are never invoked concurrently.
type Monitor interface {
	Start(runID string, items, batches int)
	BatchStarted(b Batch)
	BatchFailed(b Batch, err error)
	BatchDone(b Batch, outcomes []core.MatchOutcome)
	Finish(result *core.MatchResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _, _ int)                {}
func (n *noopMonitor) BatchStarted(_ Batch)                     {}
func (n *noopMonitor) BatchFailed(_ Batch, _ error)             {}
func (n *noopMonitor) BatchDone(_ Batch, _ []core.MatchOutcome) {}
func (n *noopMonitor) Finish(_ *core.MatchResult)               {}
