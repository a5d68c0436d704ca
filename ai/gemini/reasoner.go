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
	"log/slog"
	"strings"

	"github.com/poiesic/prodmatch/ai"
	"google.golang.org/genai"
)

// generateModels is the subset of *genai.Models used by Reasoner.
type generateModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Reasoner implements ai.Reasoner with GenerateContent in JSON response mode.
type Reasoner struct {
	models generateModels
	model  string
	logger *slog.Logger
}

func newReasoner(models generateModels, config *ai.Config) *Reasoner {
	return &Reasoner{
		models: models,
		model:  config.ReasoningModel,
		logger: slog.Default().With("component", "gemini-reasoner"),
	}
}

// NewReasoner creates a GenAI reasoner. Returns ai.Reasoner interface to enforce abstraction.
func NewReasoner(ctx context.Context, config *ai.Config) (ai.Reasoner, error) {
	client, err := newClient(ctx, config)
	if err != nil {
		return nil, err
	}
	return newReasoner(client.Models, config), nil
}

// Reason runs one deterministic completion and concatenates the text parts
// of the first candidate.
func (r *Reasoner) Reason(ctx context.Context, system, prompt string) (string, error) {
	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       &temperature,
	}

	resp, err := r.models.GenerateContent(ctx, r.model, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, config)
	if err != nil {
		r.logger.Error("failed to generate content", "err", err)
		return "", classifyError("reasoning", "GenerateContent", err)
	}

	var sb strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			if p != nil && p.Text != "" {
				sb.WriteString(p.Text)
			}
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		r.logger.Debug("no text returned from model")
		return "", &ai.ServiceError{
			Service: "reasoning",
			Op:      "GenerateContent",
			Kind:    ai.Transient,
			Err:     ai.ErrEmptyResponse,
		}
	}
	return sb.String(), nil
}
