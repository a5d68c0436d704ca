package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/poiesic/prodmatch/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeEmbeddings struct {
	vectors [][]float32
	err     error
}

func (f *fakeEmbeddings) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	return f.vectors, f.err
}

func (f *fakeEmbeddings) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[0], nil
}

type fakeModel struct {
	response *llms.ContentResponse
	err      error
	calls    int
}

func (f *fakeModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   ai.ErrorKind
		status int
	}{
		{"rate limited", errors.New("API returned unexpected status code: 429: Rate limit reached"), ai.Quota, 429},
		{"server error", errors.New("API returned unexpected status code: 503: overloaded"), ai.Transient, 503},
		{"bad request", errors.New("API returned unexpected status code: 400: invalid input"), ai.Permanent, 400},
		{"quota text", errors.New("You exceeded your current quota"), ai.Quota, 0},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), ai.Transient, 0},
		{"unknown", errors.New("invalid character 'x'"), ai.Permanent, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyError("embedding", "EmbedDocuments", tt.err)
			var se *ai.ServiceError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.kind, se.Kind)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, classifyError("embedding", "EmbedDocuments", nil))
}

func TestEmbedder_EmbedTexts(t *testing.T) {
	logger := slog.Default()

	t.Run("returns vectors in order", func(t *testing.T) {
		e := &Embedder{embedder: &fakeEmbeddings{vectors: [][]float32{{1}, {2}}}, logger: logger}
		vectors, err := e.EmbedTexts(context.Background(), []string{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1}, {2}}, vectors)
	})

	t.Run("count mismatch is permanent", func(t *testing.T) {
		e := &Embedder{embedder: &fakeEmbeddings{vectors: [][]float32{{1}}}, logger: logger}
		_, err := e.EmbedTexts(context.Background(), []string{"a", "b"})
		assert.ErrorIs(t, err, ai.ErrCountMismatch)
		assert.False(t, ai.IsRetryable(err))
	})

	t.Run("service errors are classified", func(t *testing.T) {
		e := &Embedder{embedder: &fakeEmbeddings{err: errors.New("API returned unexpected status code: 429: slow down")}, logger: logger}
		_, err := e.EmbedTexts(context.Background(), []string{"a"})
		assert.True(t, ai.IsQuota(err))
	})

	t.Run("single text", func(t *testing.T) {
		e := &Embedder{embedder: &fakeEmbeddings{vectors: [][]float32{{0.5, 0.5}}}, logger: logger}
		v, err := e.EmbedText(context.Background(), "a")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.5, 0.5}, v)
	})
}

func TestReasoner_Reason(t *testing.T) {
	logger := slog.Default()

	t.Run("returns first choice", func(t *testing.T) {
		model := &fakeModel{response: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: `{"is_confident": false}`}}}}
		r := &Reasoner{client: model, logger: logger}
		out, err := r.Reason(context.Background(), "system", "prompt")
		require.NoError(t, err)
		assert.Equal(t, `{"is_confident": false}`, out)
		assert.Equal(t, 1, model.calls)
	})

	t.Run("empty choices are transient", func(t *testing.T) {
		r := &Reasoner{client: &fakeModel{response: &llms.ContentResponse{}}, logger: logger}
		_, err := r.Reason(context.Background(), "system", "prompt")
		assert.ErrorIs(t, err, ai.ErrEmptyResponse)
		assert.True(t, ai.IsRetryable(err))
	})

	t.Run("auth failure is permanent", func(t *testing.T) {
		r := &Reasoner{client: &fakeModel{err: errors.New("API returned unexpected status code: 401: bad key")}, logger: logger}
		_, err := r.Reason(context.Background(), "system", "prompt")
		assert.False(t, ai.IsRetryable(err))
	})
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	cfg := ai.NewConfig(ai.WithEmbeddingModel(""))
	p, err := NewProvider(cfg)
	assert.Error(t, err)
	assert.Nil(t, p)
}
