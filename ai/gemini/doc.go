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

// Package gemini implements ai.AIProvider on top of google.golang.org/genai.
//
// The same provider talks to the Gemini Developer API (Config.APIKey) or to
// Vertex AI (Config.Project and Config.Location). Embeddings default to
// text-embedding-005 with the SEMANTIC_SIMILARITY task type at 768
// dimensions; see ai.GeminiConfig.
//
// API errors are classified by HTTP status into ai.ServiceError kinds. A 429
// or RESOURCE_EXHAUSTED status is reported as ai.Quota and carries the
// server's retryDelay hint when one is present.
package gemini
