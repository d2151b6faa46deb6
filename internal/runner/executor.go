package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/tiago/llamactl/internal/errors"
)

// runCommand spawns cmd and waits for it to exit, blocking only the calling
// goroutine. Stdout is returned with trailing whitespace trimmed. Stderr is
// diagnostics, not failure: the runner emits load-progress warnings there
// even on success, so it is logged and otherwise ignored unless the process
// exits non-zero, in which case it becomes the failure message.
//
// The context deadline is the only cancellation mechanism; there are no
// retries here.
func runCommand(ctx context.Context, command Command) (string, error) {
	if len(command.Args) == 0 {
		return "", apperrors.ErrEmptyCommand
	}

	cmd := exec.CommandContext(ctx, command.Args[0], command.Args[1:]...)

	// Cancellation kills only the direct child. A grandchild (the runner's
	// worker processes) can keep the stdout/stderr pipes open past the
	// kill, which would stall Wait until the whole tree exits; WaitDelay
	// abandons the pipes after the grace period so the deadline still
	// bounds the call.
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Str("cmd", command.String()).Msg("invoking runner")

	err := cmd.Run()

	if stderr.Len() > 0 {
		log.Debug().
			Str("op", command.Args[len(command.Args)-1]).
			Str("stderr", strings.TrimSpace(stderr.String())).
			Msg("runner diagnostics")
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = strings.TrimSpace(stdout.String())
			}
			return "", apperrors.NewExitError(exitErr.ExitCode(), msg)
		}
		return "", apperrors.NewSpawnError(command.Args[0], err)
	}

	return strings.TrimRight(stdout.String(), " \t\r\n"), nil
}
