package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tiago/llamactl/internal/runner"
)

var deleteForceFlag bool

var deleteCmd = &cobra.Command{
	Use:     "delete <model>",
	Aliases: []string{"rm"},
	Short:   "Remove an installed model",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForceFlag, "force", "f", false, "Delete without confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	if !deleteForceFlag {
		fmt.Printf("Delete model '%s'? [y/N]: ", name)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	gateway := runner.NewGateway(nil)
	out, err := gateway.Execute(context.Background(), runner.Delete(name))
	if err != nil {
		return err
	}

	if out != "" {
		fmt.Println(out)
	} else {
		fmt.Printf("Deleted %s\n", name)
	}
	return nil
}
