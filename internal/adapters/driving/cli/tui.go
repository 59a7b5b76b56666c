package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the full screen chat interface.

Controls:
  Enter     - Ask the typed question (or the default one)
  PgUp/PgDn - Scroll the conversation
  Ctrl-T    - Suggested questions
  Ctrl-R    - Start a new conversation
  Esc       - Back
  Ctrl-C    - Quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return launchTUI(cmd)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func launchTUI(cmd *cobra.Command) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if chatService == nil {
		return errors.New("chat service not configured")
	}

	app, err := tui.NewApp(tui.NewPorts(chatService, retrievalService, topicService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
