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

package retry

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when Policy.MaxAttempts is less than 1.
	ErrInvalidMaxAttempts = errors.New("max attempts must be at least 1")

	// ErrInvalidDelay is returned when a policy delay is negative or the base
	// delay exceeds the cap.
	ErrInvalidDelay = errors.New("invalid retry delay")
)
