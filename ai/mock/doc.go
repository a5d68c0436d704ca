// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Reasoner,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vectors, err := mockProvider.Embedder().EmbedTexts(ctx, []string{"test"})
//
//	// Custom behavior injection
//	mockReasoner := mock.NewMockReasoner()
//	mockReasoner.ReasonFunc = func(ctx context.Context, system, prompt string) (string, error) {
//	    return `{"is_confident": false}`, nil
//	}
//
//	// Check call counts
//	count := mockReasoner.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockReasoner: Answers {"is_confident": false}
//   - MockProvider: Aggregates mock embedder and reasoner
//
// All mocks are safe for concurrent use.
package mock
