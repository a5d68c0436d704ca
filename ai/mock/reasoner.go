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

package mock

import (
	"context"
	"sync"
)

type MockReasoner struct {
	// ReasonFunc is called by Reason if set.
	// If nil, the reasoner declines to decide.
	ReasonFunc func(ctx context.Context, system, prompt string) (string, error)

	mu        sync.Mutex
	callCount int
	prompts   []string
}

func NewMockReasoner() *MockReasoner {
	return &MockReasoner{}
}

// NewStaticReasoner returns a reasoner that always answers reply.
func NewStaticReasoner(reply string) *MockReasoner {
	return &MockReasoner{
		ReasonFunc: func(context.Context, string, string) (string, error) {
			return reply, nil
		},
	}
}

func (m *MockReasoner) Reason(ctx context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.prompts = append(m.prompts, prompt)
	fn := m.ReasonFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, system, prompt)
	}
	return `{"is_confident": false, "reason": "mock reasoner does not decide"}`, nil
}

func (m *MockReasoner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Prompts returns every user prompt received, in call order.
func (m *MockReasoner) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

func (m *MockReasoner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.prompts = nil
	m.ReasonFunc = nil
}
