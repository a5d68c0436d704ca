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

// Package progress reports the progress of long-running batch work on a
// terminal.
//
// Tracker prints a single carriage-return line such as
//
//	Matching: 150/400 (37.5%) - 12.3 items/s, 2 failed
//
// and RunMonitor adapts it to match.Monitor so that a match run can drive it
// batch by batch.
package progress
