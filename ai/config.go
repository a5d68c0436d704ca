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


package ai

import (
	"errors"
	"strings"
)

// Supported provider kinds.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// TaskTypeSemanticSimilarity is the embedding task type used for product matching.
const TaskTypeSemanticSimilarity = "SEMANTIC_SIMILARITY"

// Config holds configuration for AI service providers.
type Config struct {
	// Provider selects the implementation: "openai" for any OpenAI-compatible
	// server, "gemini" for the Google GenAI API or Vertex AI.
	Provider string

	// EmbeddingHost is the base URL for the embedding service API.
	// Only used by the openai provider.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// ReasoningHost is the base URL for the reasoning (chat) service API.
	// Only used by the openai provider.
	ReasoningHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-005"
	EmbeddingModel string

	// ReasoningModel is the model identifier used to disambiguate candidates.
	// Example: "qwen2.5:7b", "gemini-2.0-flash"
	ReasoningModel string

	// APIKey authenticates against the service. Local OpenAI-compatible
	// servers accept any token, so it may be empty for the openai provider.
	APIKey string

	// Project and Location select a Vertex AI deployment for the gemini
	// provider. When Project is empty the Gemini API is used with APIKey.
	Project  string
	Location string

	// EmbeddingTaskType is passed to providers that accept a task hint.
	EmbeddingTaskType string

	// EmbeddingDimensions requests a fixed output dimensionality where supported.
	// Zero leaves the model default.
	EmbeddingDimensions int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider selects the provider implementation.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithReasoningHost sets the reasoning service host URL.
func WithReasoningHost(host string) ConfigOption {
	return func(c *Config) {
		c.ReasoningHost = host
	}
}

// WithHost sets both embedding and reasoning hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ReasoningHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithReasoningModel sets the reasoning model identifier.
func WithReasoningModel(model string) ConfigOption {
	return func(c *Config) {
		c.ReasoningModel = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithVertex targets a Vertex AI project and location.
func WithVertex(project, location string) ConfigOption {
	return func(c *Config) {
		c.Project = project
		c.Location = location
	}
}

// WithEmbeddingTaskType sets the embedding task hint.
func WithEmbeddingTaskType(taskType string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingTaskType = taskType
	}
}

// WithEmbeddingDimensions sets the requested embedding dimensionality.
func WithEmbeddingDimensions(dims int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingDimensions = dims
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and reasoning use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		Provider:          ProviderOpenAI,
		EmbeddingHost:     defaultHost,
		ReasoningHost:     defaultHost,
		EmbeddingModel:    "embeddinggemma",
		ReasoningModel:    "qwen2.5:7b",
		EmbeddingTaskType: TaskTypeSemanticSimilarity,
	}
}

// GeminiConfig returns defaults for the Google GenAI provider: text-embedding-005
// with 768 dimensions and the semantic similarity task type.
func GeminiConfig() *Config {
	return &Config{
		Provider:            ProviderGemini,
		EmbeddingModel:      "text-embedding-005",
		ReasoningModel:      "gemini-2.0-flash",
		Location:            "us-central1",
		EmbeddingTaskType:   TaskTypeSemanticSimilarity,
		EmbeddingDimensions: 768,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//   cfg := NewConfig(
//       WithHost("http://localhost:11434/v1"),
//       WithEmbeddingModel("text-embedding-3-small"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// For the openai provider it adds the /v1 suffix to hosts if missing, which is
// required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Provider != ProviderOpenAI {
		return
	}
	c.EmbeddingHost = withV1Suffix(c.EmbeddingHost)
	c.ReasoningHost = withV1Suffix(c.ReasoningHost)
}

func withV1Suffix(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderOpenAI:
		if c.EmbeddingHost == "" {
			return errors.New("ai config: EmbeddingHost is required")
		}
		if c.ReasoningHost == "" {
			return errors.New("ai config: ReasoningHost is required")
		}
	case ProviderGemini:
		if c.APIKey == "" && c.Project == "" {
			return errors.New("ai config: gemini requires an APIKey or a Vertex Project")
		}
		if c.Project != "" && c.Location == "" {
			return errors.New("ai config: Location is required with a Vertex Project")
		}
	default:
		return errors.New("ai config: unknown Provider " + c.Provider)
	}

	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.ReasoningModel == "" {
		return errors.New("ai config: ReasoningModel is required")
	}
	if c.EmbeddingDimensions < 0 {
		return errors.New("ai config: EmbeddingDimensions cannot be negative")
	}
	return nil
}
