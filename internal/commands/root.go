// Package commands provides CLI commands for llamactl.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tiago/llamactl/internal/config"
)

var (
	// Global flags
	modelFlag   string
	outputFlag  string
	fileFlag    string
	appendFlag  bool
	rawFlag     bool
	verboseFlag bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "llamactl [prompt]",
	Short: "CLI for local pyollama models",
	Long: `llamactl is a command-line interface for driving a local pyollama
runner. It spawns the runner per request; no daemon, no sockets.

Examples:
  llamactl chat                       Start interactive chat
  llamactl models                     List installed models
  llamactl "What is Go?" -m llama3    Send a single prompt
  llamactl -f prompt.md               Read prompt from file
  cat prompt.md | llamactl            Read prompt from stdin
  llamactl "Hello" -o response.md     Save response to file`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A .env next to the binary may carry PYOLLAMA_* overrides.
		_ = godotenv.Load()
		setupLogging()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("llamactl %s (built %s)\n", Version, BuildTime)
			return nil
		}

		stat, _ := os.Stdin.Stat()
		hasStdin := (stat.Mode() & os.ModeCharDevice) == 0

		if fileFlag != "" {
			data, err := os.ReadFile(fileFlag)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			return runGenerate(string(data), rawFlag)
		}

		if hasStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runGenerate(string(data), rawFlag)
		}

		if len(args) > 0 {
			return runGenerate(args[0], rawFlag)
		}

		// No input - show help
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., llama3)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Log runner invocations to stderr")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	rootCmd.Flags().BoolVar(&appendFlag, "append", false, "Append to the output file instead of replacing it")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print the raw response without decoration")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(psCmd)
	rootCmd.AddCommand(configCmd)
}

// setupLogging wires zerolog to stderr. Debug output (the exact argv of
// each runner invocation) shows only with --verbose or config verbose.
func setupLogging() {
	level := zerolog.WarnLevel
	cfg, err := config.LoadConfig()
	if err == nil && cfg.Verbose {
		level = zerolog.DebugLevel
	}
	if verboseFlag {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// loadConfigLenient loads config, warning on stderr instead of failing; a
// broken config file should not block work that can run on defaults.
func loadConfigLenient() config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	return cfg
}

// getModel returns the model to use (from flag or config)
func getModel() string {
	if modelFlag != "" {
		return modelFlag
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return ""
	}
	return cfg.DefaultModel
}
