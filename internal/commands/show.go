package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/tiago/llamactl/internal/models"
	"github.com/tiago/llamactl/internal/runner"
)

var showJSONFlag bool

var showCmd = &cobra.Command{
	Use:   "show <model>",
	Short: "Show details about an installed model",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSONFlag, "json", false, "Print the raw JSON document")
}

func runShow(cmd *cobra.Command, args []string) error {
	gateway := runner.NewGateway(nil)

	out, err := gateway.Execute(context.Background(), runner.Show(args[0]))
	if err != nil {
		return err
	}

	if showJSONFlag {
		if gjson.Valid(out) {
			fmt.Print(gjson.Get(out, "@pretty").Raw)
		} else {
			fmt.Println(out)
		}
		return nil
	}

	info, ok := models.ModelInfoFromJSON(out)
	if !ok {
		// The runner answered with something we cannot parse; pass it
		// through rather than hide it.
		fmt.Println(out)
		return nil
	}

	fmt.Print(formatModelInfo(info))
	return nil
}

// formatModelInfo renders the parsed show document as a field table,
// skipping fields the runner left empty.
func formatModelInfo(info models.ModelInfo) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Name:\t%s\n", info.Name)
	if info.Size > 0 {
		_, _ = fmt.Fprintf(w, "Size:\t%s (%d bytes)\n", models.HumanSize(info.Size), info.Size)
	}
	if info.Format != "" {
		_, _ = fmt.Fprintf(w, "Format:\t%s\n", info.Format)
	}
	if info.Path != "" {
		_, _ = fmt.Fprintf(w, "Path:\t%s\n", info.Path)
	}
	if info.ModifiedAt != "" {
		_, _ = fmt.Fprintf(w, "Modified:\t%s\n", info.ModifiedAt)
	}
	_ = w.Flush()
	return sb.String()
}
