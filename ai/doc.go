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


// Package ai provides abstractions for the AI services used by prodmatch.
//
// This package defines interfaces for text embeddings and for the reasoning
// model that disambiguates near matches. The matching pipeline depends on
// these abstractions rather than on any vendor SDK.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Reasoner: Runs a JSON-producing completion for disambiguation
//   - AIProvider: Aggregates AI services for convenient initialization
//
// # Error Classification
//
// Every implementation returns failures as *ServiceError with a Kind of
// Transient, Quota or Permanent. The kind is decided once, at the point where
// the implementation talks to its SDK. Callers use IsRetryable, IsQuota and
// RetryAfterHint instead of inspecting error text.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible APIs through langchaingo
//   - ai/gemini: Google GenAI (Gemini API or Vertex AI)
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, gemini.NewEmbedder, etc.) return
// INTERFACE types. Test utility constructors (mock.NewMockEmbedder,
// mock.NewMockReasoner) return CONCRETE types so tests can inject behavior
// and assert on call counts.
//
// # Usage Example
//
//	config := ai.GeminiConfig()
//	config.APIKey = os.Getenv("GOOGLE_API_KEY")
//	provider, err := gemini.NewProvider(ctx, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vectors, err := provider.Embedder().EmbedTexts(ctx, []string{"diet lipton green tea 20oz"})
package ai
