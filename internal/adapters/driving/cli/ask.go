package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/procdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/procdocs/internal/core/domain"
)

var askSession string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the process documents",
	Long: `Answers a question from the indexed process documents. The answer is
streamed as it is generated and followed by the documents it was based on.

Pass --session to continue an earlier conversation.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "continue an existing chat session")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errNotConfigured("chat")
	}

	ctx := cmd.Context()
	events, err := chatService.Chat(ctx, domain.ChatRequest{
		SessionID: askSession,
		OwnerID:   cliOwner,
		Message:   args[0],
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	out := cmd.OutOrStdout()
	r := newRenderer(out)

	var (
		sessionID string
		sources   []domain.Source
		done      bool
	)
	for ev := range events {
		switch ev.Type {
		case domain.EventSession:
			sessionID = ev.SessionID
		case domain.EventChunk:
			fmt.Fprint(out, ev.Content)
		case domain.EventSources:
			sources = ev.Sources
		case domain.EventDone:
			done = true
		case domain.EventError:
			fmt.Fprintln(out)
			return errors.New(ev.Message)
		}
	}
	fmt.Fprintln(out)

	if !done {
		if err := ctx.Err(); err != nil {
			return err
		}
		return domain.ErrGenerationFailed
	}

	printSources(out, r, sources)
	if sessionID != "" {
		fmt.Fprintln(out, r.render(r.styles.Muted, "Session: "+sessionID))
	}
	return nil
}

func printSources(w io.Writer, r renderer, sources []domain.Source) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.render(r.styles.Title, "Sources:"))
	for i := range sources {
		s := &sources[i]
		fmt.Fprintf(w, "  [%d] %s (%s)\n", i+1, r.render(r.styles.SourceTitle, s.Title), s.Category)
		if s.SourceURL != "" {
			fmt.Fprintf(w, "      %s\n", r.render(r.styles.Link, s.SourceURL))
		}
	}
	fmt.Fprintln(w)
}

// renderer applies lipgloss styles only when writing to a terminal.
type renderer struct {
	styled bool
	styles *styles.Styles
}

func newRenderer(w io.Writer) renderer {
	return renderer{styled: isTerminal(w), styles: styles.DefaultStyles()}
}

func (r renderer) render(style lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return style.Render(text)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
