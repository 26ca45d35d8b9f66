// Command procdocs indexes company process documents and answers questions
// about them.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/procdocs/internal/adapters/driven/config/file"
	"github.com/custodia-labs/procdocs/internal/adapters/driving/cli"
	"github.com/custodia-labs/procdocs/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := file.LoadDotEnv(); err != nil {
		logger.Warn("Failed to load .env: %v", err)
	}

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
