package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driving"
)

// progressInterval is how often sync progress is polled.
var progressInterval = 500 * time.Millisecond

var (
	syncDryRun bool
	syncJSON   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise documents from the configured source",
	Long: `Lists the configured document source and indexes every new or changed
file. Unchanged files are skipped without fetching or embedding.

With --dry-run, files are fetched and extracted but nothing is embedded
or stored, and the verdict for each file is printed instead.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "preview the sync without writing")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errNotConfigured("sync")
	}

	ctx := cmd.Context()

	if syncDryRun {
		previews, err := syncService.Preview(ctx)
		if err != nil {
			return fmt.Errorf("preview failed: %w", err)
		}
		if syncJSON {
			return outputJSON(cmd, previews)
		}
		outputPreview(cmd, previews)
		return nil
	}

	var summary *domain.SyncSummary
	var err error
	if syncJSON {
		summary, err = syncService.Sync(ctx)
	} else {
		cmd.Println("Synchronising documents...")
		summary, err = syncWithProgress(ctx, cmd, syncService)
	}
	if err != nil {
		if summary != nil && !syncJSON {
			outputSummary(cmd, summary)
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	if syncJSON {
		return outputJSON(cmd, summary)
	}
	outputSummary(cmd, summary)
	return nil
}

// syncWithProgress runs sync while displaying progress updates.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	reconciler driving.SyncReconciler,
) (*domain.SyncSummary, error) {
	type result struct {
		summary *domain.SyncSummary
		err     error
	}
	done := make(chan result, 1)
	go func() {
		summary, err := reconciler.Sync(ctx)
		done <- result{summary, err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	lastDone := -1
	for {
		select {
		case r := <-done:
			if lastDone >= 0 {
				cmd.Println()
			}
			return r.summary, r.err
		case <-ticker.C:
			status := reconciler.Status()
			if status.Running && status.FilesDone != lastDone {
				cmd.Printf("\rProcessing... %d/%d files", status.FilesDone, status.FilesFound)
				lastDone = status.FilesDone
			}
		}
	}
}

func outputSummary(cmd *cobra.Command, s *domain.SyncSummary) {
	cmd.Printf("Files found:     %d\n", s.FilesFound)
	cmd.Printf("Files processed: %d\n", s.FilesProcessed)
	cmd.Printf("Files skipped:   %d\n", s.FilesSkipped)
	cmd.Printf("Files failed:    %d\n", s.FilesFailed)
	cmd.Printf("Duration:        %s\n", s.Duration.Round(time.Millisecond))
}

func outputPreview(cmd *cobra.Command, previews []domain.FilePreview) {
	if len(previews) == 0 {
		cmd.Println("No files found.")
		return
	}

	cmd.Printf("Found %d files:\n\n", len(previews))
	for i := range previews {
		p := &previews[i]
		cmd.Printf("  [%s] %s\n", p.Status, p.File.Name)
		if p.Category != "" {
			cmd.Printf("      Category: %s\n", p.Category)
		}
		if p.ContentMIMEType != "" {
			cmd.Printf("      Content:  %s (%d bytes, %d chars of text)\n",
				p.ContentMIMEType, p.ContentLength, p.TextLength)
		}
		if p.Error != "" {
			cmd.Printf("      Error:    %s\n", p.Error)
		}
	}
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
