package gitexec

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Client exposes the git operations the scan pipeline needs on top of a Runner.
type Client struct {
	runner     *Runner
	cloneDepth int
	logger     hclog.Logger
}

// NewClient wraps runner with repository-level operations.
func NewClient(runner *Runner, cloneDepth int, logger hclog.Logger) *Client {
	return &Client{runner: runner, cloneDepth: cloneDepth, logger: logger}
}

// perfConfigs are applied after clone, each in its own error boundary. They
// only speed things up; a failing one is skipped.
var perfConfigs = [][]string{
	{"config", "core.preloadindex", "true"},
	{"config", "core.fscache", "true"},
	{"config", "gc.auto", "0"},
	{"config", "fetch.parallel", "8"},
}

// CloneShallow clones repoURL into dir with history-limiting and
// blob-filtering options, then applies best-effort performance tuning.
func (c *Client) CloneShallow(ctx context.Context, dir, repoURL string) error {
	_, err := c.runner.Run(ctx, dir,
		"clone",
		"--filter=blob:none",
		"--no-checkout",
		fmt.Sprintf("--depth=%d", c.cloneDepth),
		repoURL+".git", ".")
	if err != nil {
		return fmt.Errorf("clone failed for %s: %w", repoURL, err)
	}

	for _, cfg := range perfConfigs {
		if _, err := c.runner.Run(ctx, dir, cfg...); err != nil {
			c.logger.Debug("git perf config skipped", "config", strings.Join(cfg, " "), "error", err)
		}
	}
	return nil
}

// FetchCommit fetches a single commit reference from origin into dir.
func (c *Client) FetchCommit(ctx context.Context, dir, ref string) error {
	if _, err := c.runner.Run(ctx, dir, "fetch", "origin", ref); err != nil {
		return err
	}
	return nil
}

// RevList returns the ancestor chain of ref, newest first, as git reports it.
func (c *Client) RevList(ctx context.Context, dir, ref string) ([]string, error) {
	out, err := c.runner.Run(ctx, dir, "rev-list", ref)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// IsReachableFromBranch reports whether commit is contained in any known
// branch, local or remote-tracking.
func (c *Client) IsReachableFromBranch(ctx context.Context, dir, commit string) (bool, error) {
	out, err := c.runner.Run(ctx, dir, "branch", "--contains", commit, "--all")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Parent returns the first parent of ref.
func (c *Client) Parent(ctx context.Context, dir, ref string) (string, error) {
	out, err := c.runner.Run(ctx, dir, "rev-list", ref+"~1", "-n", "1")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CommitCount returns the number of commits reachable from ref. Best-effort:
// failures yield zero, which callers treat as "unknown".
func (c *Client) CommitCount(ctx context.Context, dir, ref string) int {
	out, err := c.runner.Run(ctx, dir, "rev-list", "--count", ref)
	if err != nil {
		c.logger.Debug("rev-list --count failed", "ref", ref, "error", err)
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0
	}
	return n
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
