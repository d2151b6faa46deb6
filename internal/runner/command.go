// Package runner is the bridge to the pyollama runner process. It builds
// runner command lines, executes them, and exposes a single gateway through
// which every operation in the program is issued.
package runner

import (
	"strings"

	"github.com/tiago/llamactl/internal/config"
)

type opKind int

const (
	opListModels opKind = iota
	opGenerate
	opPull
	opShow
	opDelete
	opRunning
)

// Operation is one logical request to the runner. Immutable once
// constructed; use the constructor functions below.
type Operation struct {
	kind   opKind
	model  string
	prompt string
}

// ListModels asks the runner for its installed models.
func ListModels() Operation {
	return Operation{kind: opListModels}
}

// Generate asks model to complete prompt.
func Generate(model, prompt string) Operation {
	return Operation{kind: opGenerate, model: model, prompt: prompt}
}

// Pull downloads a model.
func Pull(model string) Operation {
	return Operation{kind: opPull, model: model}
}

// Show requests a model's metadata (the runner prints JSON).
func Show(model string) Operation {
	return Operation{kind: opShow, model: model}
}

// Delete removes a model from the model directory.
func Delete(model string) Operation {
	return Operation{kind: opDelete, model: model}
}

// Running lists models currently loaded by the runner.
func Running() Operation {
	return Operation{kind: opRunning}
}

// Model returns the model name the operation targets, if any.
func (o Operation) Model() string {
	return o.model
}

// Prompt returns the prompt text for generate operations.
func (o Operation) Prompt() string {
	return o.prompt
}

// Name returns the runner subcommand the operation maps to.
func (o Operation) Name() string {
	switch o.kind {
	case opGenerate:
		return "generate"
	case opPull:
		return "pull"
	case opShow:
		return "show"
	case opDelete:
		return "delete"
	case opRunning:
		return "ps"
	default:
		return "list"
	}
}

func (o Operation) args() []string {
	switch o.kind {
	case opGenerate:
		return []string{"generate", o.model, o.prompt}
	case opPull, opShow, opDelete:
		return []string{o.Name(), o.model}
	default:
		return []string{o.Name()}
	}
}

// Command is one fully resolved runner invocation: the argv token slice plus
// the configuration it was built against. Built fresh per call, never reused.
type Command struct {
	Args   []string
	Config config.Config
}

// Build produces the command for op under cfg. Pure; no side effects.
func Build(op Operation, cfg config.Config) Command {
	args := []string{cfg.PythonPath, "-m", "pyollama", "--model-dir", cfg.ModelDir}
	args = append(args, op.args()...)
	return Command{Args: args, Config: cfg}
}

// String renders the command as a copy-pasteable shell line. Execution never
// goes through a shell (the argv is passed to the OS directly), but the
// rendered line must still survive shell re-parsing token for token, since
// it is what users paste when reproducing a failure. Every token is quoted
// as needed, so prompts and model directories containing spaces or quote
// characters come back as single words.
func (c Command) String() string {
	quoted := make([]string, len(c.Args))
	for i, arg := range c.Args {
		quoted[i] = shellQuote(arg)
	}
	return strings.Join(quoted, " ")
}

// shellSafe covers the characters that need no quoting in POSIX shells.
func shellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("@%+=:,./-_", r)
}

// shellQuote wraps arg in single quotes unless it is already a single safe
// word. Embedded single quotes close the quote, emit an escaped quote, and
// reopen, so arbitrary text survives as exactly one token.
func shellQuote(arg string) string {
	if arg == "" {
		return "''"
	}
	safe := true
	for _, r := range arg {
		if !shellSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
