package file

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/logger"
)

// Environment variables that override config.toml values.
//
//nolint:gosec // G101: variable names, not credentials
const (
	EnvDriveFolderID       = "PROCDOCS_DRIVE_FOLDER_ID"
	EnvDriveCredentials    = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvDriveServiceAccount = "GOOGLE_SERVICE_ACCOUNT_JSON"
	EnvDriveAccessToken    = "GOOGLE_ACCESS_TOKEN"
	EnvFilesystemRoot      = "PROCDOCS_FILESYSTEM_ROOT"
	EnvSourceType          = "PROCDOCS_SOURCE"
	EnvOpenAIKey           = "OPENAI_API_KEY"
	EnvAnthropicKey        = "ANTHROPIC_API_KEY"
	EnvOllamaHost          = "OLLAMA_HOST"
	EnvDatabaseURL         = "DATABASE_URL"
	EnvStoreDriver         = "PROCDOCS_STORE"
	EnvNATSURL             = "NATS_URL"
	EnvNATSToken           = "NATS_TOKEN"
	EnvServerAddr          = "PROCDOCS_ADDR"
	EnvTopK                = "PROCDOCS_TOP_K"
)

// LoadDotEnv loads .env files into the process environment. Variables that
// are already set win. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		logger.Debug("Loaded environment from %s", p)
	}
	return nil
}

// ApplyEnvOverrides replaces settings with any matching environment variables.
// API keys only apply to the providers that use them.
func ApplyEnvOverrides(s *domain.AppSettings) {
	d := &s.Source.Drive
	d.FolderID = envStr(EnvDriveFolderID, d.FolderID)
	d.CredentialsFile = envStr(EnvDriveCredentials, d.CredentialsFile)
	d.CredentialsJSON = envStr(EnvDriveServiceAccount, d.CredentialsJSON)
	d.AccessToken = envStr(EnvDriveAccessToken, d.AccessToken)
	s.Source.Filesystem.Root = envStr(EnvFilesystemRoot, s.Source.Filesystem.Root)
	s.Source.Type = domain.SourceType(envStr(EnvSourceType, string(s.Source.Type)))

	s.Embedding.APIKey = providerKey(s.Embedding.Provider, s.Embedding.APIKey)
	s.LLM.APIKey = providerKey(s.LLM.Provider, s.LLM.APIKey)
	if s.Embedding.Provider == domain.AIProviderOllama {
		s.Embedding.BaseURL = envStr(EnvOllamaHost, s.Embedding.BaseURL)
	}
	if s.LLM.Provider == domain.AIProviderOllama {
		s.LLM.BaseURL = envStr(EnvOllamaHost, s.LLM.BaseURL)
	}

	s.Store.DSN = envStr(EnvDatabaseURL, s.Store.DSN)
	s.Store.Driver = domain.StoreDriver(envStr(EnvStoreDriver, string(s.Store.Driver)))

	s.Events.NATSURL = envStr(EnvNATSURL, s.Events.NATSURL)
	s.Events.NATSToken = envStr(EnvNATSToken, s.Events.NATSToken)
	s.Server.Addr = envStr(EnvServerAddr, s.Server.Addr)
	s.Retrieval.TopK = envInt(EnvTopK, s.Retrieval.TopK)
}

func providerKey(provider domain.AIProvider, current string) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return envStr(EnvOpenAIKey, current)
	case domain.AIProviderAnthropic:
		return envStr(EnvAnthropicKey, current)
	default:
		return current
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		logger.Warn("Ignoring %s=%q: not an integer", key, v)
	}
	return fallback
}
