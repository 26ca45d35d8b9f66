package domain

import "fmt"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// MaxTokens caps the answer length (0 = provider default).
	MaxTokens int

	// Temperature controls randomness (0 = provider default).
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkSettings configures the word-window chunker.
type ChunkSettings struct {
	// TargetSize is the window size in words.
	TargetSize int

	// Overlap is the number of words shared by consecutive windows.
	Overlap int
}

// RetrievalSettings configures the retrieval engine.
type RetrievalSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int
}

// SyncSettings configures the sync reconciler.
type SyncSettings struct {
	// MinTextLength is the minimum trimmed text length for a file to be indexed.
	MinTextLength int

	// MinDocumentLength is the minimum content length for downstream
	// generation features such as assessments.
	MinDocumentLength int

	// CategoryRulesFile optionally replaces the built-in filename rules (YAML).
	CategoryRulesFile string
}

// ChatSettings configures the chat orchestrator.
type ChatSettings struct {
	// HistoryLimit caps the prior messages sent to the provider (0 = all).
	HistoryLimit int
}

// StoreDriver selects the Document Store backend.
type StoreDriver string

// Available store drivers.
const (
	StoreDriverSQLite   StoreDriver = "sqlite"
	StoreDriverPostgres StoreDriver = "postgres"
	StoreDriverMemory   StoreDriver = "memory"
)

// StoreSettings configures persistence.
type StoreSettings struct {
	Driver StoreDriver

	// Path is the sqlite data directory (default ~/.procdocs/data).
	Path string

	// DSN is the postgres connection string.
	DSN string
}

// SourceType selects the document source.
type SourceType string

// Available document sources.
const (
	SourceTypeDrive      SourceType = "drive"
	SourceTypeFilesystem SourceType = "filesystem"
)

// DriveSettings configures the Google Drive document source.
type DriveSettings struct {
	// FolderID is the root folder to index.
	FolderID string

	// CredentialsFile is a service-account JSON key file.
	CredentialsFile string

	// CredentialsJSON is an inline service-account JSON key.
	CredentialsJSON string

	// AccessToken is a pre-issued OAuth access token, used when no service
	// account is configured.
	AccessToken string

	// MaxDepth is how many folder levels below FolderID are listed.
	MaxDepth int
}

// HasCredentials reports whether any Drive credential is configured.
func (d DriveSettings) HasCredentials() bool {
	return d.CredentialsFile != "" || d.CredentialsJSON != "" || d.AccessToken != ""
}

// FilesystemSettings configures the local directory document source.
type FilesystemSettings struct {
	// Root is the directory to index.
	Root string
}

// SourceSettings configures the document source.
type SourceSettings struct {
	Type       SourceType
	Drive      DriveSettings
	Filesystem FilesystemSettings
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// EventSettings configures event publishing.
type EventSettings struct {
	// NATSURL enables NATS publishing when set.
	NATSURL string

	// NATSToken authenticates against NATS.
	NATSToken string

	// SubjectPrefix is prepended to event subjects.
	SubjectPrefix string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Chunk     ChunkSettings
	Retrieval RetrievalSettings
	Sync      SyncSettings
	Chat      ChatSettings
	Store     StoreSettings
	Source    SourceSettings
	Server    ServerSettings
	Events    EventSettings
}

// Default values for recognised options.
const (
	DefaultChunkTargetSize   = 500
	DefaultChunkOverlap      = 100
	DefaultTopK              = 5
	DefaultMinTextLength     = 10
	DefaultMinDocumentLength = 50
	DefaultDriveMaxDepth     = 2
	DefaultServerAddr        = ":8080"
	DefaultSubjectPrefix     = "procdocs"
)

// DefaultAppSettings returns settings with sensible defaults.
// AI providers and the document source are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunk: ChunkSettings{
			TargetSize: DefaultChunkTargetSize,
			Overlap:    DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{TopK: DefaultTopK},
		Sync: SyncSettings{
			MinTextLength:     DefaultMinTextLength,
			MinDocumentLength: DefaultMinDocumentLength,
		},
		Store: StoreSettings{Driver: StoreDriverSQLite},
		Source: SourceSettings{
			Type:  SourceTypeDrive,
			Drive: DriveSettings{MaxDepth: DefaultDriveMaxDepth},
		},
		Server: ServerSettings{Addr: DefaultServerAddr},
		Events: EventSettings{SubjectPrefix: DefaultSubjectPrefix},
	}
}

// Validate checks settings that would otherwise fail late.
func (s AppSettings) Validate() error {
	if s.Chunk.TargetSize <= 0 {
		return fmt.Errorf("%w: chunk.target_size must be positive", ErrInvalidInput)
	}
	if s.Chunk.Overlap < 0 || s.Chunk.Overlap >= s.Chunk.TargetSize {
		return fmt.Errorf("%w: chunk.overlap must be in [0, chunk.target_size)", ErrInvalidInput)
	}
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", ErrInvalidInput)
	}
	switch s.Store.Driver {
	case StoreDriverSQLite, StoreDriverMemory:
	case StoreDriverPostgres:
		if s.Store.DSN == "" {
			return fmt.Errorf("%w: store.dsn is required for postgres", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: store driver %q", ErrUnsupportedType, s.Store.Driver)
	}
	switch s.Source.Type {
	case SourceTypeDrive, SourceTypeFilesystem:
	default:
		return fmt.Errorf("%w: source type %q", ErrUnsupportedType, s.Source.Type)
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
