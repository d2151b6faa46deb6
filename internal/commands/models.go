package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tiago/llamactl/internal/models"
	"github.com/tiago/llamactl/internal/runner"
)

var modelsCmd = &cobra.Command{
	Use:     "models",
	Aliases: []string{"list", "ls"},
	Short:   "List installed models",
	RunE:    runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	gateway := runner.NewGateway(nil)

	out, err := gateway.Execute(context.Background(), runner.ListModels())
	if err != nil {
		return err
	}

	fmt.Print(formatModelTable(models.ParseModelList(out)))
	return nil
}

// formatModelTable renders the model list as an aligned name/size table.
func formatModelTable(infos []models.ModelInfo) string {
	if len(infos) == 0 {
		return "No models installed. Use 'llamactl pull <name>' to fetch one.\n"
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSIZE")
	_, _ = fmt.Fprintln(w, "----\t----")
	for _, info := range infos {
		size := "-"
		if info.Size > 0 {
			size = models.HumanSize(info.Size)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", info.Name, size)
	}
	_ = w.Flush()
	return sb.String()
}
