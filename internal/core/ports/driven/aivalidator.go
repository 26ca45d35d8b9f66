package driven

import "github.com/custodia-labs/procdocs/internal/core/domain"

// AIConfigValidator checks that configured AI providers are reachable.
type AIConfigValidator interface {
	// ValidateEmbedding pings the embedding provider described by settings.
	ValidateEmbedding(settings *domain.EmbeddingSettings) error

	// ValidateLLM pings the LLM provider described by settings.
	ValidateLLM(settings *domain.LLMSettings) error
}
