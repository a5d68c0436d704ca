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

package gemini

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/poiesic/prodmatch/ai"
	"google.golang.org/genai"
)

// Provider implements ai.AIProvider over a single shared genai.Client.
type Provider struct {
	client   *genai.Client
	embedder *Embedder
	reasoner *Reasoner
	logger   *slog.Logger
}

// NewProvider creates a provider for the Gemini API, or for Vertex AI when
// config.Project is set.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	client, err := newClient(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		client:   client,
		embedder: newEmbedder(client.Models, config),
		reasoner: newReasoner(client.Models, config),
		logger:   slog.Default().With("component", "gemini-provider"),
	}, nil
}

func newClient(ctx context.Context, config *ai.Config) (*genai.Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Provider != ai.ProviderGemini {
		return nil, errors.New("gemini: config.Provider must be " + ai.ProviderGemini)
	}

	cc := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.Project != "" {
		cc = &genai.ClientConfig{
			Project:  config.Project,
			Location: config.Location,
			Backend:  genai.BackendVertexAI,
		}
	}
	return genai.NewClient(ctx, cc)
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Reasoner returns the reasoning service.
func (p *Provider) Reasoner() ai.Reasoner {
	return p.reasoner
}

// Close releases resources held by the provider.
// genai.Client holds no resources that need explicit release.
func (p *Provider) Close() error {
	p.logger.Debug("closing gemini provider")
	return nil
}

// classifyError converts a genai error into an *ai.ServiceError.
func classifyError(service, op string, err error) error {
	if err == nil {
		return nil
	}

	se := &ai.ServiceError{Service: service, Op: op, Err: err}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		applyAPIError(se, apiErr)
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		applyAPIError(se, *apiErrPtr)
	default:
		se.Kind = ai.KindForTransportError(err)
	}
	return se
}

func applyAPIError(se *ai.ServiceError, apiErr genai.APIError) {
	se.StatusCode = apiErr.Code
	se.Kind = ai.KindForStatus(apiErr.Code)
	if apiErr.Status == "RESOURCE_EXHAUSTED" {
		se.Kind = ai.Quota
	}
	if se.Kind == ai.Quota {
		se.RetryAfter = retryDelay(apiErr.Details)
	}
}

// retryDelay extracts google.rpc.RetryInfo.retryDelay ("12s") from error details.
func retryDelay(details []map[string]any) time.Duration {
	for _, d := range details {
		raw, ok := d["retryDelay"].(string)
		if !ok {
			continue
		}
		if dur, err := time.ParseDuration(raw); err == nil {
			return dur
		}
		if secs, err := strconv.Atoi(raw); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}
