// Package cli provides the cobra command tree for procdocs.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/procdocs/internal/core/ports/driving"
	"github.com/custodia-labs/procdocs/internal/logger"
)

// annotationNoServices marks commands that run without the service graph.
const annotationNoServices = "procdocs/no-services"

// cliOwner is recorded on chat sessions started from the command line.
const cliOwner = "cli"

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	configDir string
	verbose   bool
	logFormat string
)

// Services holds the driving ports used by the commands.
type Services struct {
	Sync      driving.SyncReconciler
	Chat      driving.ChatOrchestrator
	Search    driving.SearchService
	Processes driving.ProcessService
	Settings  driving.SettingsService

	// ServerAddr is the default listen address for serve.
	ServerAddr string
}

// Options are the global flag values passed to the bootstrap function.
type Options struct {
	// ConfigDir overrides the config directory (default ~/.procdocs).
	ConfigDir string
}

// BootstrapFunc builds the service graph. The returned cleanup releases
// stores and connections and may be nil.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	syncService     driving.SyncReconciler
	chatService     driving.ChatOrchestrator
	searchService   driving.SearchService
	processService  driving.ProcessService
	settingsService driving.SettingsService
	serverAddr      string

	bootstrap       BootstrapFunc
	releaseServices func()
)

var rootCmd = &cobra.Command{
	Use:   "procdocs",
	Short: "Chat with your company's process documents",
	Long: `procdocs indexes process documents from Google Drive or a local
directory and answers questions about them with cited sources.

Run 'procdocs sync' to index documents, then 'procdocs ask' or
'procdocs chat' to ask questions. 'procdocs serve' starts the HTTP API.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.procdocs)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
}

// SetServices sets the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	syncService = s.Sync
	chatService = s.Chat
	searchService = s.Search
	processService = s.Processes
	settingsService = s.Settings
	serverAddr = s.ServerAddr
}

// SetBootstrap sets the function that builds services once flags are parsed.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// PersistentPostRunE is skipped when a command fails.
	defer teardown(nil, nil) //nolint:errcheck // teardown never fails
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if err := logger.SetFormat(logFormat); err != nil {
		return err
	}

	if bootstrap == nil || cmd.Annotations[annotationNoServices] == "true" {
		return nil
	}

	services, release, err := bootstrap(cmd.Context(), Options{ConfigDir: configDir})
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	SetServices(services)
	releaseServices = release
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if releaseServices != nil {
		releaseServices()
		releaseServices = nil
	}
	return nil
}

// errNotConfigured reports a missing service for the named command area.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
