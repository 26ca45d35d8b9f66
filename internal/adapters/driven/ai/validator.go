package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings from the settings wizard by
// building a throwaway client and pinging it.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator that waits up to pingTimeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// WithTimeout returns a copy that waits up to timeout for each ping.
func (v *ConfigValidator) WithTimeout(timeout time.Duration) *ConfigValidator {
	return &ConfigValidator{timeout: timeout}
}

// ValidateEmbedding pings the embedding provider. Unconfigured settings pass.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	if err := v.ping(svc.Ping); err != nil {
		return fmt.Errorf("%w: %s at %s: %w", domain.ErrEmbeddingUnavailable, settings.Provider, endpoint(settings.BaseURL), err)
	}
	return nil
}

// ValidateLLM pings the LLM provider. Unconfigured settings pass.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	if err := v.ping(svc.Ping); err != nil {
		return fmt.Errorf("%w: %s at %s: %w", domain.ErrLLMUnavailable, settings.Provider, endpoint(settings.BaseURL), err)
	}
	return nil
}

func (v *ConfigValidator) ping(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return fn(ctx)
}

func endpoint(baseURL string) string {
	if baseURL == "" {
		return "default endpoint"
	}
	return baseURL
}
