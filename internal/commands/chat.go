package commands

import (
	"github.com/spf13/cobra"

	"github.com/tiago/llamactl/internal/runner"
	"github.com/tiago/llamactl/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with a local model.

The session keeps every turn on screen; each message spawns one runner
process. Without -m you pick the model from a list first.
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	cfg := loadConfigLenient()

	// An empty model name sends the TUI to the model picker.
	return tui.RunChat(runner.NewGateway(nil), getModel(), cfg.MarkdownStyle)
}
