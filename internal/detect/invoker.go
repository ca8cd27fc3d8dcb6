// Package detect invokes the external secret-detection tool against a
// repository workspace and filters its line-oriented JSON output down to
// verified findings. The tool is a black box: only its exit status and
// stdout matter here.
package detect

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/fpscan/fpscan/internal/findings"
	"github.com/fpscan/fpscan/pkg/shared/files"
)

// scanner output lines can carry whole blobs of context
const maxLineSize = 4 * megabyte

// Invoker runs the detection tool with an adaptive time budget and
// timeout-only retries.
type Invoker struct {
	binPath string
	budget  BudgetPolicy
	retry   RetryPolicy
	logger  hclog.Logger
}

// NewInvoker returns an Invoker for the given tool binary.
func NewInvoker(binPath string, budget BudgetPolicy, retry RetryPolicy, logger hclog.Logger) *Invoker {
	if binPath == "" {
		binPath = "trufflehog"
	}
	return &Invoker{binPath: binPath, budget: budget, retry: retry, logger: logger}
}

// Scan runs the tool against branchRef's history since baseRef in dir.
// commitHint sizes the budget; an empty baseRef scans the whole branch.
// Failures never propagate: timeouts are retried with escalating budgets and
// anything else is logged and reported as zero findings.
func (i *Invoker) Scan(ctx context.Context, dir, baseRef, branchRef string, commitHint int) ([]*findings.Finding, error) {
	workspaceBytes := files.DirSizeBytes(dir)
	base := i.budget.Estimate(commitHint, workspaceBytes)
	concurrency := toolConcurrency(commitHint, workspaceBytes)

	for attempt := 1; attempt <= i.retry.MaxAttempts; attempt++ {
		budget := i.retry.AttemptBudget(base, attempt)
		out, err := i.run(ctx, dir, baseRef, branchRef, concurrency, budget)
		if err == nil {
			return i.filter(out), nil
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			i.logger.Warn("detector execution failed, treating as zero findings",
				"dir", dir, "branch", branchRef, "error", err)
			return nil, nil
		}
		i.logger.Warn("detector timed out",
			"dir", dir, "branch", branchRef, "attempt", attempt, "budget", budget)
	}

	i.logger.Warn("detector timed out on every attempt, treating as zero findings",
		"dir", dir, "branch", branchRef, "attempts", i.retry.MaxAttempts)
	return nil, nil
}

func (i *Invoker) run(ctx context.Context, dir, baseRef, branchRef string, concurrency int, budget time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	args := []string{"git", "--branch", branchRef}
	if baseRef != "" {
		args = append(args, "--since-commit", baseRef)
	}
	args = append(args,
		"--no-update", "--json", "--only-verified",
		"--concurrency", strconv.Itoa(concurrency),
		"file://"+absDir)

	i.logger.Debug("running detector", "bin", i.binPath, "args", args)

	cmd := exec.CommandContext(ctx, i.binPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, context.DeadlineExceeded
		}
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// filter keeps only verified findings that name a detector and carry commit
// source metadata. Malformed or unverified lines are dropped silently.
func (i *Invoker) filter(out []byte) []*findings.Finding {
	var kept []*findings.Finding

	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		f, ok := findings.ParseLine(line)
		if !ok {
			continue
		}
		if !f.Verified || f.DetectorName == "" || !f.HasCommitMetadata() {
			continue
		}
		kept = append(kept, f)
	}
	if err := sc.Err(); err != nil {
		i.logger.Warn("detector output truncated", "error", err)
	}
	return kept
}
