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
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(buf *bytes.Buffer, total, interval int) (*Tracker, *time.Time) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker := NewTracker(buf, "Matching", total, interval)
	tracker.now = func() time.Time { return clock }
	return tracker, &clock
}

func TestTracker_Basic(t *testing.T) {
	var buf bytes.Buffer
	tracker, clock := newTestTracker(&buf, 100, 10)

	tracker.Start()
	*clock = clock.Add(10 * time.Second)
	tracker.Increment(25, 0)
	tracker.Increment(25, 0)
	tracker.Increment(50, 0)

	assert.Equal(t, 10*time.Second, tracker.Elapsed())

	output := buf.String()
	assert.Contains(t, output, "Matching: 100/100 (100.0%) - 10.0 items/s")
}

func TestTracker_ReportInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker, _ := newTestTracker(&buf, 1000, 100)

	tracker.Start()
	tracker.Increment(50, 0)
	assert.Empty(t, buf.String(), "below the interval nothing is printed")

	tracker.Increment(50, 0)
	assert.Contains(t, buf.String(), "100/1000")
}

func TestTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker, _ := newTestTracker(&buf, 10, 1)

	tracker.Start()
	tracker.Increment(25, 0)
	assert.Equal(t, 10, tracker.Current())
}

func TestTracker_Failures(t *testing.T) {
	var buf bytes.Buffer
	tracker, _ := newTestTracker(&buf, 10, 1)

	tracker.Start()
	tracker.Increment(5, 0)
	assert.NotContains(t, buf.String(), "failed")

	tracker.Increment(5, 3)
	assert.Equal(t, 3, tracker.Failed())
	assert.Contains(t, buf.String(), "10/10 (100.0%) - 0.0 items/s, 3 failed")
}

func TestTracker_FinishKeepsPartialCount(t *testing.T) {
	var buf bytes.Buffer
	tracker, _ := newTestTracker(&buf, 100, 1000)

	tracker.Start()
	tracker.Increment(40, 0)
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "40/100 (40.0%)")
	assert.True(t, strings.HasSuffix(output, "\n"), "finish should print newline")
}

func TestTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker, _ := newTestTracker(&buf, 100, 1)

	tracker.Increment(10, 0)
	tracker.Finish()
	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestTracker_SetUnitAndTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker, _ := newTestTracker(&buf, 0, 1)
	tracker.SetUnit("rows")

	tracker.Start()
	tracker.SetTotal(4)
	tracker.Increment(2, 0)
	assert.Contains(t, buf.String(), "2/4 (50.0%) - 0.0 rows/s")
}

func TestRunMonitor(t *testing.T) {
	var buf bytes.Buffer
	monitor := NewRunMonitor(&buf, nil)

	monitor.Start("run-1", 5, 3)
	monitor.BatchStarted(match.Batch{Index: 0})
	monitor.BatchDone(match.Batch{Index: 0, Items: []string{"a", "b"}}, nil)
	monitor.BatchFailed(match.Batch{Index: 1, Items: []string{"c", "d"}}, errors.New("embedding failed"))
	monitor.BatchDone(match.Batch{Index: 2, Items: []string{"e"}}, nil)

	result := core.NewMatchResult()
	monitor.Finish(result)

	output := buf.String()
	assert.Contains(t, output, "Matching: 2/5")
	assert.Contains(t, output, "5/5 (100.0%)")
	assert.Contains(t, output, "2 failed")
	require.True(t, strings.HasSuffix(output, "\n"))
}

func TestRunMonitor_FinishWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	monitor := NewRunMonitor(&buf, nil)
	monitor.Finish(core.NewMatchResult())
	assert.Empty(t, buf.String())
}
