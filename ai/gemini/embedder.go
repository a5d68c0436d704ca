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
	"fmt"
	"log/slog"

	"github.com/poiesic/prodmatch/ai"
	"google.golang.org/genai"
)

// embedModels is the subset of *genai.Models used by Embedder.
type embedModels interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder implements ai.Embedder with the GenAI EmbedContent API.
type Embedder struct {
	models     embedModels
	model      string
	taskType   string
	dimensions int
	logger     *slog.Logger
}

func newEmbedder(models embedModels, config *ai.Config) *Embedder {
	return &Embedder{
		models:     models,
		model:      config.EmbeddingModel,
		taskType:   config.EmbeddingTaskType,
		dimensions: config.EmbeddingDimensions,
		logger:     slog.Default().With("component", "gemini-embedder"),
	}
}

// NewEmbedder creates a GenAI embedder. Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(ctx context.Context, config *ai.Config) (ai.Embedder, error) {
	client, err := newClient(ctx, config)
	if err != nil {
		return nil, err
	}
	return newEmbedder(client.Models, config), nil
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts embeds all texts in one request, preserving order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts), "model", e.model)

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	config := &genai.EmbedContentConfig{TaskType: e.taskType}
	if e.dimensions > 0 {
		dims := int32(e.dimensions)
		config.OutputDimensionality = &dims
	}

	resp, err := e.models.EmbedContent(ctx, e.model, contents, config)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, classifyError("embedding", "EmbedContent", err)
	}

	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, &ai.ServiceError{
			Service: "embedding",
			Op:      "EmbedContent",
			Kind:    ai.Permanent,
			Err:     fmt.Errorf("%w: expected %d, got %d", ai.ErrCountMismatch, len(texts), got),
		}
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, &ai.ServiceError{
				Service: "embedding",
				Op:      "EmbedContent",
				Kind:    ai.Transient,
				Err:     fmt.Errorf("%w: item %d has no values", ai.ErrEmptyResponse, i),
			}
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}
