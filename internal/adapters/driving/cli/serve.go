package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/procdocs/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API for sync, search, document browsing and streamed chat.

The server shuts down gracefully on SIGINT or SIGTERM. The listen address
defaults to server.addr from the config file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr or :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := resolveServeAddr()

	server := httpapi.NewServer(httpapi.Services{
		Sync:      syncService,
		Chat:      chatService,
		Search:    searchService,
		Processes: processService,
	})

	logger.Info("HTTP API listening on %s", addr)
	cmd.Printf("procdocs API listening on %s\n", addr)
	return server.ListenAndServe(cmd.Context(), addr)
}

func resolveServeAddr() string {
	switch {
	case serveAddr != "":
		return serveAddr
	case serverAddr != "":
		return serverAddr
	default:
		return domain.DefaultServerAddr
	}
}
