package services

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
	"github.com/custodia-labs/procdocs/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider       = "embedding.provider"
	keyEmbedModel          = "embedding.model"
	keyEmbedBaseURL        = "embedding.base_url"
	keyEmbedAPIKey         = "embedding.api_key"
	keyLLMProvider         = "llm.provider"
	keyLLMModel            = "llm.model"
	keyLLMBaseURL          = "llm.base_url"
	keyLLMAPIKey           = "llm.api_key"
	keyLLMMaxTokens        = "llm.max_tokens"
	keyLLMTemperature      = "llm.temperature"
	keyChunkTargetSize     = "chunk.target_size"
	keyChunkOverlap        = "chunk.overlap"
	keyRetrievalTopK       = "retrieval.top_k"
	keySyncMinTextLength   = "sync.min_text_length"
	keySyncMinDocLength    = "sync.min_document_length"
	keySyncCategoryRules   = "sync.category_rules_file"
	keyChatHistoryLimit    = "chat.history_limit"
	keyStoreDriver         = "store.driver"
	keyStorePath           = "store.path"
	keyStoreDSN            = "store.dsn"
	keySourceType          = "source.type"
	keyDriveFolderID       = "drive.folder_id"
	keyDriveCredentials    = "drive.credentials_file"
	keyDriveMaxDepth       = "drive.max_depth"
	keyFilesystemRoot      = "filesystem.root"
	keyServerAddr          = "server.addr"
	keyEventsNATSURL       = "events.nats.url"
	keyEventsSubjectPrefix = "events.subject_prefix"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings stored in a ConfigStore.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// The aiValidator is optional.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings. Missing keys take defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:       s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			MaxTokens:   s.getInt(keyLLMMaxTokens, d.LLM.MaxTokens),
			Temperature: s.configStore.GetFloat(keyLLMTemperature),
		},
		Chunk: domain.ChunkSettings{
			TargetSize: s.getInt(keyChunkTargetSize, d.Chunk.TargetSize),
			Overlap:    s.getIntAllowZero(keyChunkOverlap, d.Chunk.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyRetrievalTopK, d.Retrieval.TopK),
		},
		Sync: domain.SyncSettings{
			MinTextLength:     s.getIntAllowZero(keySyncMinTextLength, d.Sync.MinTextLength),
			MinDocumentLength: s.getIntAllowZero(keySyncMinDocLength, d.Sync.MinDocumentLength),
			CategoryRulesFile: s.configStore.GetString(keySyncCategoryRules),
		},
		Chat: domain.ChatSettings{
			HistoryLimit: s.getInt(keyChatHistoryLimit, d.Chat.HistoryLimit),
		},
		Store: domain.StoreSettings{
			Driver: domain.StoreDriver(s.getString(keyStoreDriver, string(d.Store.Driver))),
			Path:   s.configStore.GetString(keyStorePath),
			DSN:    s.configStore.GetString(keyStoreDSN),
		},
		Source: domain.SourceSettings{
			Type: domain.SourceType(s.getString(keySourceType, string(d.Source.Type))),
			Drive: domain.DriveSettings{
				FolderID:        s.configStore.GetString(keyDriveFolderID),
				CredentialsFile: s.configStore.GetString(keyDriveCredentials),
				MaxDepth:        s.getIntAllowZero(keyDriveMaxDepth, d.Source.Drive.MaxDepth),
			},
			Filesystem: domain.FilesystemSettings{
				Root: s.configStore.GetString(keyFilesystemRoot),
			},
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, d.Server.Addr),
		},
		Events: domain.EventSettings{
			NATSURL:       s.configStore.GetString(keyEventsNATSURL),
			SubjectPrefix: s.getString(keyEventsSubjectPrefix, d.Events.SubjectPrefix),
		},
	}

	return settings, nil
}

// Save persists application settings in one write. Secrets are only written
// when set, so saving settings read without keys keeps the stored ones.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyEmbedProvider:       settings.Embedding.Provider.String(),
		keyEmbedModel:          settings.Embedding.Model,
		keyEmbedBaseURL:        settings.Embedding.BaseURL,
		keyLLMProvider:         settings.LLM.Provider.String(),
		keyLLMModel:            settings.LLM.Model,
		keyLLMBaseURL:          settings.LLM.BaseURL,
		keyLLMMaxTokens:        settings.LLM.MaxTokens,
		keyLLMTemperature:      settings.LLM.Temperature,
		keyChunkTargetSize:     settings.Chunk.TargetSize,
		keyChunkOverlap:        settings.Chunk.Overlap,
		keyRetrievalTopK:       settings.Retrieval.TopK,
		keySyncMinTextLength:   settings.Sync.MinTextLength,
		keySyncMinDocLength:    settings.Sync.MinDocumentLength,
		keySyncCategoryRules:   settings.Sync.CategoryRulesFile,
		keyChatHistoryLimit:    settings.Chat.HistoryLimit,
		keyStoreDriver:         string(settings.Store.Driver),
		keyStorePath:           settings.Store.Path,
		keySourceType:          string(settings.Source.Type),
		keyDriveFolderID:       settings.Source.Drive.FolderID,
		keyDriveCredentials:    settings.Source.Drive.CredentialsFile,
		keyDriveMaxDepth:       settings.Source.Drive.MaxDepth,
		keyFilesystemRoot:      settings.Source.Filesystem.Root,
		keyServerAddr:          settings.Server.Addr,
		keyEventsSubjectPrefix: settings.Events.SubjectPrefix,
	}
	if settings.Embedding.APIKey != "" {
		values[keyEmbedAPIKey] = settings.Embedding.APIKey
	}
	if settings.LLM.APIKey != "" {
		values[keyLLMAPIKey] = settings.LLM.APIKey
	}

	if err := s.configStore.Update(values); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrUnsupportedType, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the stored settings for consistency.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// ValidateEmbeddingConfig pings the configured embedding provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig pings the configured LLM provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// baseURLFor keeps a local provider's URL and clears it for cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero treats an explicit 0 as a value rather than "unset".
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
