package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

var (
	processCategory string
	processSearch   string
	processPage     int
	processLimit    int
	processJSON     bool
)

var processesCmd = &cobra.Command{
	Use:     "processes",
	Aliases: []string{"docs"},
	Short:   "Browse indexed process documents",
}

var processesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed process documents",
	Long: `Lists indexed documents sorted by title. Filter by category with --category
and by a title or content substring with --search.`,
	Args: cobra.NoArgs,
	RunE: runProcessesList,
}

var processesShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show a process document",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcessesShow,
}

var processesCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List document categories",
	Args:  cobra.NoArgs,
	RunE:  runProcessesCategories,
}

func init() {
	processesListCmd.Flags().StringVarP(&processCategory, "category", "c", "", "filter by category")
	processesListCmd.Flags().StringVar(&processSearch, "search", "", "filter by title or content")
	processesListCmd.Flags().IntVar(&processPage, "page", domain.DefaultPage, "page number")
	processesListCmd.Flags().IntVarP(&processLimit, "limit", "n", domain.DefaultPageLimit, "documents per page")

	for _, c := range []*cobra.Command{processesListCmd, processesShowCmd, processesCategoriesCmd} {
		c.Flags().BoolVar(&processJSON, "json", false, "output as JSON")
		processesCmd.AddCommand(c)
	}
	rootCmd.AddCommand(processesCmd)
}

func runProcessesList(cmd *cobra.Command, _ []string) error {
	if processService == nil {
		return errNotConfigured("process")
	}

	page, err := processService.List(cmd.Context(), domain.DocumentQuery{
		Search:   processSearch,
		Category: processCategory,
		Page:     processPage,
		Limit:    processLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if processJSON {
		return outputJSON(cmd, page)
	}

	if len(page.Documents) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range page.Documents {
		doc := &page.Documents[i]
		cmd.Printf("  %s\n", doc.ID)
		cmd.Printf("    Title:    %s\n", doc.Title)
		cmd.Printf("    Category: %s\n", doc.Category)
		if doc.SourceURL != "" {
			cmd.Printf("    URL:      %s\n", doc.SourceURL)
		}
		cmd.Println()
	}

	cmd.Printf("Page %d of %d (%d documents)\n", page.Page, page.TotalPages, page.Total)
	return nil
}

func runProcessesShow(cmd *cobra.Command, args []string) error {
	if processService == nil {
		return errNotConfigured("process")
	}

	doc, err := processService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if processJSON {
		return outputJSON(cmd, doc)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:      %s\n", doc.Title)
	cmd.Printf("  Category:   %s\n", doc.Category)
	cmd.Printf("  Type:       %s\n", doc.ContentMIMEType)
	cmd.Printf("  URL:        %s\n", doc.SourceURL)
	cmd.Printf("  Words:      %d\n", domain.CountWords(doc.Content))
	cmd.Printf("  Assessable: %t\n", processService.EligibleForAssessment(doc))
	cmd.Printf("  Created:    %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Synced:     %s\n", doc.SyncedAt.Format("2006-01-02 15:04:05"))
	cmd.Println()
	cmd.Println(doc.Content)
	return nil
}

func runProcessesCategories(cmd *cobra.Command, _ []string) error {
	if processService == nil {
		return errNotConfigured("process")
	}

	categories, err := processService.Categories(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	if processJSON {
		return outputJSON(cmd, categories)
	}

	for _, c := range categories {
		cmd.Println(c)
	}
	return nil
}
