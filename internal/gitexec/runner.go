// Package gitexec drives the git CLI as an external collaborator. The
// orchestrator depends only on exit status and line-oriented stdout; every
// invocation runs under a bounded timeout with interactive prompts disabled.
package gitexec

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Runner executes git commands in a working directory.
type Runner struct {
	timeout time.Duration
	logger  hclog.Logger
}

// NewRunner returns a Runner with the given per-invocation timeout.
func NewRunner(timeout time.Duration, logger hclog.Logger) *Runner {
	return &Runner{timeout: timeout, logger: logger}
}

// Run executes `git args...` in dir and returns its stdout. Failures are
// wrapped in *CommandError carrying stderr and timeout classification.
func (r *Runner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.logger.Debug("running git command", "args", strings.Join(args, " "), "dir", dir)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return "", &CommandError{
			Args:     args,
			Stderr:   stderr.String(),
			TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded),
			Err:      err,
		}
	}
	return stdout.String(), nil
}
