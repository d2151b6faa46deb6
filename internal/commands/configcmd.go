package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tiago/llamactl/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change settings",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and persist it.

Keys: python_path, model_dir, default_model, request_timeout, verbose,
copy_to_clipboard, markdown_style`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (showing defaults)\n", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "python_path:\t%s\n", cfg.PythonPath)
	_, _ = fmt.Fprintf(w, "model_dir:\t%s\n", cfg.ModelDir)
	_, _ = fmt.Fprintf(w, "default_model:\t%s\n", cfg.DefaultModel)
	_, _ = fmt.Fprintf(w, "request_timeout:\t%d\n", cfg.RequestTimeout)
	_, _ = fmt.Fprintf(w, "verbose:\t%t\n", cfg.Verbose)
	_, _ = fmt.Fprintf(w, "copy_to_clipboard:\t%t\n", cfg.CopyToClipboard)
	_, _ = fmt.Fprintf(w, "markdown_style:\t%s\n", cfg.MarkdownStyle)
	return w.Flush()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (starting from defaults)\n", err)
	}

	switch key {
	case "python_path":
		cfg.PythonPath = value
	case "model_dir":
		cfg.ModelDir = value
	case "default_model":
		cfg.DefaultModel = value
	case "markdown_style":
		cfg.MarkdownStyle = value
	case "request_timeout":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("request_timeout must be a non-negative number of seconds, got %q", value)
		}
		cfg.RequestTimeout = n
	case "verbose", "copy_to_clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		if key == "verbose" {
			cfg.Verbose = b
		} else {
			cfg.CopyToClipboard = b
		}
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	if err := config.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}
