package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	apperrors "github.com/tiago/llamactl/internal/errors"
	"github.com/tiago/llamactl/internal/render"
	"github.com/tiago/llamactl/internal/runner"
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)
)

// runGenerate executes a single generation and outputs the response.
// If rawOutput is true, only the raw response text is printed without
// decoration.
func runGenerate(prompt string, rawOutput bool) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		// Short-circuit before any process is spawned.
		return apperrors.NewMissingInputError("prompt")
	}

	modelName := getModel()
	if modelName == "" {
		return apperrors.NewMissingInputError("model")
	}

	cfg := loadConfigLenient()
	gateway := runner.NewGateway(nil)

	var spin *spinner
	if !rawOutput {
		spin = newSpinner(fmt.Sprintf("Generating with %s", modelName))
		spin.start()
	}

	startTime := time.Now()
	text, err := gateway.Execute(context.Background(), runner.Generate(modelName, prompt))
	requestDuration := time.Since(startTime)

	if err != nil {
		if !rawOutput {
			spin.stopWithError()
		}
		return err
	}
	if !rawOutput {
		spin.stopWithSuccess("Done")
	}

	if cfg.Verbose && !rawOutput {
		fmt.Fprintf(os.Stderr, "[verbose] Model: %s\n", modelName)
		fmt.Fprintf(os.Stderr, "[verbose] Request took %s\n", requestDuration.Round(time.Millisecond))
	}

	// Raw output mode: output only the raw text
	if rawOutput {
		if outputFlag != "" {
			return writeOutput(outputFlag, text, appendFlag)
		}
		fmt.Print(text)
		return nil
	}

	fmt.Fprintln(os.Stderr)

	if cfg.CopyToClipboard {
		if err := clipboard.WriteAll(text); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(os.Stderr, warnMsg)
		} else {
			clipMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard")
			fmt.Fprintln(os.Stderr, clipMsg)
		}
	}

	if outputFlag != "" {
		if err := writeOutput(outputFlag, text, appendFlag); err != nil {
			return err
		}
		verb := "saved to"
		if appendFlag {
			verb = "appended to"
		}
		successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Response %s %s", verb, outputFlag),
		)
		fmt.Fprintln(os.Stderr, successMsg)
		return nil
	}

	// Piped stdout gets plain text; decoration is for terminals only.
	if !isStdoutTTY() {
		fmt.Println(text)
		return nil
	}

	// Decorated output mode (TTY)
	termWidth := getTerminalWidth()
	bubbleWidth := termWidth - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	label := assistantLabelStyle.Render("✦ " + modelName)
	fmt.Println(label)

	rendered, err := render.Markdown(text,
		render.DefaultOptions().WithWidth(contentWidth).WithStyle(cfg.MarkdownStyle))
	if err != nil {
		rendered = text
	}
	rendered = strings.TrimRight(rendered, "\n")

	bubble := assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
	fmt.Println(bubble)

	return nil
}

// writeOutput writes or appends the response to path. Appended responses
// get a separating blank line so consecutive runs stay readable.
func writeOutput(path, text string, appendMode bool) error {
	if !appendMode {
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > 0 {
		text = "\n\n" + text
	}
	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("failed to append to output file: %w", err)
	}
	return nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatErrorMessage formats an error with additional context from
// structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	switch {
	case apperrors.IsMissingInput(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Provide a prompt and a model (-m or default_model in config)"))
	case apperrors.IsSpawnError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check that Python and pyollama are installed (PYOLLAMA_PYTHON overrides the interpreter)"))
	case apperrors.IsTimeout(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The runner timed out. Raise request_timeout in config or use a smaller model"))
	case apperrors.IsExitError(err):
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Runner exit code: %d", apperrors.ExitCode(err))))
	}

	return sb.String()
}
