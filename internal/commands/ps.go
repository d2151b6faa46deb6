package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tiago/llamactl/internal/runner"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "Show models currently loaded by the runner",
	RunE: func(cmd *cobra.Command, args []string) error {
		gateway := runner.NewGateway(nil)

		out, err := gateway.Execute(context.Background(), runner.Running())
		if err != nil {
			return err
		}

		if out == "" {
			fmt.Println("No models running.")
			return nil
		}
		fmt.Println(out)
		return nil
	},
}
