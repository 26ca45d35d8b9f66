package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==================== AIProvider Tests ====================

func TestAIProvider_IsValid(t *testing.T) {
	assert.True(t, AIProviderOllama.IsValid())
	assert.True(t, AIProviderOpenAI.IsValid())
	assert.True(t, AIProviderAnthropic.IsValid())
	assert.False(t, AIProvider("gemini").IsValid())
	assert.False(t, AIProvider("").IsValid())
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, "Unknown", AIProvider("x").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.False(t, EmbeddingSettings{}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}.IsConfigured())
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.False(t, LLMSettings{}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderAnthropic}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "key"}.IsConfigured())
}

// ==================== AppSettings Tests ====================

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 500, s.Chunk.TargetSize)
	assert.Equal(t, 100, s.Chunk.Overlap)
	assert.Equal(t, 5, s.Retrieval.TopK)
	assert.Equal(t, 10, s.Sync.MinTextLength)
	assert.Equal(t, 50, s.Sync.MinDocumentLength)
	assert.Equal(t, 2, s.Source.Drive.MaxDepth)
	assert.Equal(t, StoreDriverSQLite, s.Store.Driver)
	assert.NoError(t, s.Validate())
}

func TestAppSettings_Validate_MemoryDriver(t *testing.T) {
	s := DefaultAppSettings()
	s.Store.Driver = StoreDriverMemory
	assert.NoError(t, s.Validate())
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppSettings)
		err    error
	}{
		{"overlap equal to size", func(s *AppSettings) { s.Chunk.Overlap = 500 }, ErrInvalidInput},
		{"zero size", func(s *AppSettings) { s.Chunk.TargetSize = 0 }, ErrInvalidInput},
		{"zero top k", func(s *AppSettings) { s.Retrieval.TopK = 0 }, ErrInvalidInput},
		{"postgres without dsn", func(s *AppSettings) { s.Store.Driver = StoreDriverPostgres }, ErrInvalidInput},
		{"unknown store", func(s *AppSettings) { s.Store.Driver = "mongo" }, ErrUnsupportedType},
		{"unknown source", func(s *AppSettings) { s.Source.Type = "dropbox" }, ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), tt.err)
		})
	}
}

func TestDriveSettings_HasCredentials(t *testing.T) {
	assert.False(t, DriveSettings{}.HasCredentials())
	assert.True(t, DriveSettings{CredentialsFile: "sa.json"}.HasCredentials())
	assert.True(t, DriveSettings{AccessToken: "ya29"}.HasCredentials())
}
