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

package progress

import (
	"io"
	"log/slog"

	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/match"
)

// RunMonitor reports a match run on a Tracker and logs batch failures.
type RunMonitor struct {
	writer  io.Writer
	tracker *Tracker
	logger  *slog.Logger
}

var _ match.Monitor = (*RunMonitor)(nil)

// NewRunMonitor creates a monitor that writes progress to w.
func NewRunMonitor(w io.Writer, logger *slog.Logger) *RunMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunMonitor{
		writer: w,
		logger: logger.With("component", "progress"),
	}
}

func (m *RunMonitor) Start(runID string, items, batches int) {
	m.tracker = NewTracker(m.writer, "Matching", items, 1)
	m.tracker.Start()
	m.logger.Debug("match run started", "run_id", runID, "items", items, "batches", batches)
}

func (m *RunMonitor) BatchStarted(_ match.Batch) {}

func (m *RunMonitor) BatchFailed(b match.Batch, err error) {
	m.logger.Debug("batch failed", "batch", b.Index, "items", len(b.Items), "err", err)
	if m.tracker != nil {
		m.tracker.Increment(len(b.Items), len(b.Items))
	}
}

func (m *RunMonitor) BatchDone(b match.Batch, _ []core.MatchOutcome) {
	if m.tracker != nil {
		m.tracker.Increment(len(b.Items), 0)
	}
}

func (m *RunMonitor) Finish(result *core.MatchResult) {
	if m.tracker == nil {
		return
	}
	elapsed := m.tracker.Elapsed()
	m.tracker.Finish()
	m.logger.Debug("match run finished",
		"matched", len(result.MatchedProducts),
		"uncertain", len(result.UncertainMatches),
		"unmatched", len(result.NoMatches),
		"elapsed", elapsed)
}
