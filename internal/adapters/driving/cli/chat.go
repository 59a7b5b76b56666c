package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/wikichat/internal/adapters/driving/tui/styles"
)

// DefaultQuestion is asked when the user presses enter on an empty line.
const DefaultQuestion = "Ask Wikipedia: what is August?"

const plainRuleWidth = 80

var chatTUI bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about the indexed articles",
	Long: `Start an interactive question and answer session.

Each answer is grounded on the nearest chunks of the vector index and
remembers the conversation so far. Type "exit" or "quit", or press Ctrl-D,
to leave. An empty line asks the default question.

Use --tui for the full screen terminal UI.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatTUI, "tui", false, "launch the terminal UI")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if chatTUI {
		return launchTUI(cmd)
	}

	rule := chatRule()
	cmd.Println("Chat with Wikipedia!")
	cmd.Println(rule)

	session := chatService.NewSession()
	reader := bufio.NewReader(cmd.InOrStdin())

	for {
		cmd.Printf("Your Question [%s]: ", DefaultQuestion)
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			cmd.Println()
			return nil
		}

		question := strings.TrimSpace(line)
		switch strings.ToLower(question) {
		case "exit", "quit":
			return nil
		case "":
			question = DefaultQuestion
		}

		answer, askErr := chatService.Ask(cmd.Context(), session, question)
		if askErr != nil {
			cmd.Printf("Error: %v\n", askErr)
		} else {
			cmd.Printf("Answer: %s\n", answer.Text)
		}
		cmd.Println(rule)

		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

// chatRule returns a separator sized to the terminal, or a plain one when
// output is not a terminal.
func chatRule() string {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return strings.Repeat("-", plainRuleWidth)
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		width = plainRuleWidth
	}
	return styles.DefaultStyles().RenderRule(width)
}
