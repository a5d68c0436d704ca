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


package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/prodmatch/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Reasoner implements ai.Reasoner using OpenAI-compatible chat APIs.
type Reasoner struct {
	client llms.Model
	logger *slog.Logger
}

// newReasoner is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newReasoner(config *ai.Config) (*Reasoner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ReasoningHost),
		openai.WithToken(token(config)),
		openai.WithModel(config.ReasoningModel),
	)
	if err != nil {
		return nil, err
	}

	return &Reasoner{
		client: client,
		logger: slog.Default().With("component", "openai-reasoner"),
	}, nil
}

// NewReasoner creates a new reasoner using the provided configuration.
// Returns ai.Reasoner interface to enforce abstraction.
func NewReasoner(config *ai.Config) (ai.Reasoner, error) {
	return newReasoner(config)
}

// Reason runs a single deterministic JSON-mode completion.
func (r *Reasoner) Reason(ctx context.Context, system, prompt string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(system),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	response, err := r.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		r.logger.Error("failed to generate content", "err", err)
		return "", classifyError("reasoning", "GenerateContent", err)
	}

	if len(response.Choices) < 1 || strings.TrimSpace(response.Choices[0].Content) == "" {
		r.logger.Debug("no choices returned from model")
		return "", &ai.ServiceError{
			Service: "reasoning",
			Op:      "GenerateContent",
			Kind:    ai.Transient,
			Err:     ai.ErrEmptyResponse,
		}
	}

	return response.Choices[0].Content, nil
}
