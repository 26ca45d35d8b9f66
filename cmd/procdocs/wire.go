package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/procdocs/internal/adapters/driven/ai"
	"github.com/custodia-labs/procdocs/internal/adapters/driven/config/file"
	"github.com/custodia-labs/procdocs/internal/adapters/driven/events"
	"github.com/custodia-labs/procdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/procdocs/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/procdocs/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/procdocs/internal/adapters/driving/cli"
	"github.com/custodia-labs/procdocs/internal/connectors/filesystem"
	"github.com/custodia-labs/procdocs/internal/connectors/google"
	"github.com/custodia-labs/procdocs/internal/connectors/google/drive"
	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
	"github.com/custodia-labs/procdocs/internal/core/services"
	"github.com/custodia-labs/procdocs/internal/logger"
	"github.com/custodia-labs/procdocs/internal/normalisers"
	"github.com/custodia-labs/procdocs/internal/postprocessors/chunker"
)

// stores bundles the persistence ports of one backend.
type stores struct {
	docs  driven.DocumentStore
	chats driven.ChatStore
	close func() error
}

// closer releases resources in reverse order of acquisition.
type closer []func()

func (c *closer) add(fn func()) { *c = append(*c, fn) }

func (c closer) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// bootstrap builds the service graph from config, .env and the environment.
// Settings problems that only affect some commands are logged, and the
// affected services are left unset so the settings commands still work.
//
//nolint:gocyclo // Sequential wiring of every component
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}
	file.ApplyEnvOverrides(settings)

	svc := &cli.Services{
		Settings:   settingsService,
		ServerAddr: settings.Server.Addr,
	}

	if err := settings.Validate(); err != nil {
		logger.Warn("Invalid settings, only 'settings' commands are available: %v", err)
		return svc, nil, nil
	}

	var release closer
	fail := func(err error) (*cli.Services, func(), error) {
		release.run()
		return nil, nil, err
	}

	st, err := openStores(ctx, settings, opts.ConfigDir)
	if err != nil {
		return fail(err)
	}
	release.add(func() {
		if err := st.close(); err != nil {
			logger.Warn("Failed to close store: %v", err)
		}
	})

	aiResult := ai.Init(settings)
	release.add(aiResult.Close)

	publisher, err := newPublisher(settings.Events)
	if err != nil {
		return fail(err)
	}
	release.add(func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close event publisher: %v", err)
		}
	})

	promptDir := ""
	if opts.ConfigDir != "" {
		promptDir = filepath.Join(opts.ConfigDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return fail(fmt.Errorf("open prompts: %w", err))
	}

	rules, err := file.LoadCategoryRules(settings.Sync.CategoryRulesFile)
	if err != nil {
		return fail(err)
	}

	retriever := services.NewRetriever(st.docs, settings.Retrieval.TopK)
	svc.Search = services.NewSearchService(aiResult.EmbeddingService, retriever)
	svc.Processes = services.NewProcessService(st.docs, settings.Sync.MinDocumentLength)

	chat := services.NewChatOrchestrator(
		aiResult.EmbeddingService,
		retriever,
		aiResult.LLMService,
		st.chats,
		prompts,
		services.ChatConfig{
			TopK:         settings.Retrieval.TopK,
			HistoryLimit: settings.Chat.HistoryLimit,
			Options: driven.ChatOptions{
				MaxTokens:   settings.LLM.MaxTokens,
				Temperature: settings.LLM.Temperature,
			},
		},
	)
	chat.SetPublisher(publisher)
	svc.Chat = chat

	source, err := newSource(ctx, settings.Source)
	if err != nil {
		logger.Warn("Document source unavailable, sync is disabled: %v", err)
		return svc, release.run, nil
	}

	reconciler := services.NewSyncReconciler(
		source,
		st.docs,
		services.NewExtractor(normalisers.Defaults()),
		services.NewRuleCategoriser(rules),
		chunker.New(
			chunker.WithTargetSize(settings.Chunk.TargetSize),
			chunker.WithOverlap(settings.Chunk.Overlap),
		),
		aiResult.EmbeddingService,
		settings.Sync.MinTextLength,
	)
	reconciler.SetPublisher(publisher)
	svc.Sync = reconciler

	return svc, release.run, nil
}

// openStores opens the configured Document/Chat store backend.
func openStores(ctx context.Context, settings *domain.AppSettings, configDir string) (*stores, error) {
	switch settings.Store.Driver {
	case domain.StoreDriverMemory:
		logger.Warn("Using in-memory store, the index is lost on exit")
		return &stores{
			docs:  memory.NewDocumentStore(),
			chats: memory.NewChatStore(),
			close: func() error { return nil },
		}, nil

	case domain.StoreDriverPostgres:
		store, err := postgres.New(ctx, settings.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return &stores{docs: store.DocumentStore(), chats: store.ChatStore(), close: store.Close}, nil

	case domain.StoreDriverSQLite:
		dataDir := settings.Store.Path
		if dataDir == "" && configDir != "" {
			dataDir = filepath.Join(configDir, "data")
		}
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Debug("Using sqlite store at %s", store.Path())
		return &stores{docs: store.DocumentStore(), chats: store.ChatStore(), close: store.Close}, nil

	default:
		return nil, fmt.Errorf("%w: store driver %q", domain.ErrUnsupportedType, settings.Store.Driver)
	}
}

// newSource creates the configured document source.
func newSource(ctx context.Context, settings domain.SourceSettings) (driven.DocumentSource, error) {
	switch settings.Type {
	case domain.SourceTypeFilesystem:
		if settings.Filesystem.Root == "" {
			return nil, errors.New("filesystem.root is not set")
		}
		src := filesystem.New(settings.Filesystem.Root)
		if err := src.Validate(ctx); err != nil {
			return nil, err
		}
		return src, nil

	case domain.SourceTypeDrive:
		if !settings.Drive.HasCredentials() {
			return nil, google.ErrNoCredentials
		}
		svc, err := google.NewDriveService(ctx, google.Credentials{
			ServiceAccountJSON: settings.Drive.CredentialsJSON,
			ServiceAccountFile: settings.Drive.CredentialsFile,
			AccessToken:        settings.Drive.AccessToken,
		})
		if err != nil {
			return nil, fmt.Errorf("create drive client: %w", err)
		}
		src, err := drive.New(svc, drive.ConfigFromSettings(settings.Drive))
		if err != nil {
			return nil, err
		}
		return src, nil

	default:
		return nil, fmt.Errorf("%w: source type %q", domain.ErrUnsupportedType, settings.Type)
	}
}

// newPublisher connects to NATS when configured, otherwise events are dropped.
func newPublisher(settings domain.EventSettings) (driven.EventPublisher, error) {
	if settings.NATSURL == "" {
		return events.NoopPublisher{}, nil
	}
	p, err := events.NewNATSPublisher(settings.NATSURL, settings.NATSToken, settings.SubjectPrefix)
	if err != nil {
		return nil, err
	}
	logger.Info("Publishing events to %s", settings.NATSURL)
	return p, nil
}
