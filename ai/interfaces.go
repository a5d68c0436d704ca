package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Errors are returned as *ServiceError so callers can tell transient
	// failures from permanent ones.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Reasoner sends a structured prompt to a reasoning model and returns its raw reply.
// Implementations must be thread-safe for concurrent use.
type Reasoner interface {
	// Reason runs one completion with the given system instructions and user
	// prompt. Implementations request JSON output where the service supports it,
	// but callers must still treat the reply as untrusted text.
	Reason(ctx context.Context, system, prompt string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Reasoner instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Reasoner returns the reasoning service used for disambiguation.
	// The returned Reasoner is safe for concurrent use.
	Reasoner() Reasoner

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
