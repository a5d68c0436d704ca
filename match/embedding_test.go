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

package match

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/prodmatch/ai"
	"github.com/poiesic/prodmatch/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingClient_Embed(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	client, err := NewEmbeddingClient(embedder, fastRetry(), nil)
	require.NoError(t, err)

	vectors, err := client.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, mock.DeterministicVector("b", mock.DefaultDimensions), vectors[1])
	assert.Equal(t, [][]string{{"a", "b", "c"}}, embedder.Batches(), "one call per batch")
}

func TestEmbeddingClient_EmptyBatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	client, err := NewEmbeddingClient(embedder, fastRetry(), nil)
	require.NoError(t, err)

	vectors, err := client.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Zero(t, embedder.CallCount())
}

func TestEmbeddingClient_RetriesThenSucceeds(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	calls := 0
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, &ai.ServiceError{Service: "embedding", Op: "test", Kind: ai.Quota, StatusCode: 429, Err: errors.New("slow down")}
		}
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{1, 0}
		}
		return out, nil
	}
	client, err := NewEmbeddingClient(embedder, fastRetry(), nil)
	require.NoError(t, err)

	vectors, err := client.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, 2, embedder.CallCount())
}

func TestEmbeddingClient_ExhaustsAttempts(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, &ai.ServiceError{Service: "embedding", Op: "test", Kind: ai.Transient, StatusCode: 503, Err: errors.New("unavailable")}
	}
	client, err := NewEmbeddingClient(embedder, fastRetry(), nil)
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.True(t, ai.IsRetryable(err))
	assert.Equal(t, 3, embedder.CallCount())
}

func TestEmbeddingClient_CountMismatchIsPermanent(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}
	client, err := NewEmbeddingClient(embedder, fastRetry(), nil)
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ai.ErrCountMismatch)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestNewEmbeddingClient_Validation(t *testing.T) {
	_, err := NewEmbeddingClient(nil, fastRetry(), nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewEmbeddingClient(mock.NewMockEmbedder(), fastRetry(), nil)
	assert.NoError(t, err)
}
