package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/procdocs/internal/adapters/driving/tui"
)

var chatSession string

// runChatTUI is replaced in tests.
var runChatTUI = tui.Run

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Launch the interactive chat terminal UI",
	Long: `Launch an interactive chat over the process documents.

Controls:
  Enter      - Send
  Alt+Enter  - New line
  Esc        - Stop the current answer
  Ctrl+N     - New session
  PgUp/PgDn  - Scroll
  Ctrl+C     - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "continue an existing chat session")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat UI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("chat UI panic: %v", r)
		}
	}()

	if chatService == nil {
		return errNotConfigured("chat")
	}

	if err := runChatTUI(cmd.Context(), &tui.Ports{Chat: chatService}, chatSession); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
