package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tiago/llamactl/internal/runner"
)

var pullCmd = &cobra.Command{
	Use:   "pull <model>",
	Short: "Download a model into the local model directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runPull,
}

func runPull(cmd *cobra.Command, args []string) error {
	name := args[0]
	gateway := runner.NewGateway(nil)

	spin := newSpinner(fmt.Sprintf("Pulling %s", name))
	spin.start()

	out, err := gateway.Execute(context.Background(), runner.Pull(name))
	if err != nil {
		spin.stopWithError()
		return err
	}
	spin.stopWithSuccess(fmt.Sprintf("Pulled %s", name))

	if out != "" {
		fmt.Println(out)
	}
	return nil
}
