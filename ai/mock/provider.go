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

import "github.com/poiesic/prodmatch/ai"

type MockProvider struct {
	embedder *MockEmbedder
	reasoner *MockReasoner
}

// NewMockProvider returns a provider backed by default mocks.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		reasoner: NewMockReasoner(),
	}
}

func NewMockProviderWithServices(embedder *MockEmbedder, reasoner *MockReasoner) ai.AIProvider {
	return &MockProvider{
		embedder: embedder,
		reasoner: reasoner,
	}
}

func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *MockProvider) Reasoner() ai.Reasoner {
	return p.reasoner
}

func (p *MockProvider) Close() error {
	return nil
}

func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

func (p *MockProvider) GetMockReasoner() *MockReasoner {
	return p.reasoner
}
