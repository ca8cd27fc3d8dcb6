// Package workspace manages the isolated, disposable clone directories scan
// attempts run in. Every workspace belongs to exactly one attempt and is
// removed when the attempt ends; directories surviving an interrupted run
// are cleaned up by the orchestrator's sweeps.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	git "github.com/go-git/go-git/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

const dirPrefix = "fpscan-ws-"

// Manager creates and sweeps workspaces under one root directory.
type Manager struct {
	root   string
	logger hclog.Logger
}

// NewManager returns a Manager rooted at root, or the system temp directory
// when root is empty.
func NewManager(root string, logger hclog.Logger) *Manager {
	if root == "" {
		root = os.TempDir()
	}
	return &Manager{root: root, logger: logger}
}

// Handle is an exclusively-owned workspace directory. It must not outlive
// the scan attempt that acquired it.
type Handle struct {
	path    string
	manager *Manager
}

// Path returns the workspace directory.
func (h *Handle) Path() string { return h.path }

// Acquire creates a fresh, uniquely-named workspace directory.
func (m *Manager) Acquire() (*Handle, error) {
	path := filepath.Join(m.root, dirPrefix+uuid.NewString())
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Handle{path: path, manager: m}, nil
}

// Release removes the workspace directory. Removal is retried a few times
// with a short backoff to ride out transient file locks; a terminal failure
// is logged, never escalated; the orphan sweep picks the directory up later.
func (h *Handle) Release() {
	op := func() error {
		return os.RemoveAll(h.path)
	}
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), 2)
	if err := backoff.Retry(op, policy); err != nil {
		h.manager.logger.Warn("failed to remove workspace, leaving for sweep", "path", h.path, "error", err)
	}
}

// Sweep removes orphaned workspace directories left under the root by prior
// interrupted runs. Only directories carrying the workspace name prefix are
// considered, and of those only real clone directories or empty shells are
// removed, so an unrelated directory that happens to sit under the root is
// never touched.
func (m *Manager) Sweep() {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		m.logger.Warn("workspace sweep skipped", "root", m.root, "error", err)
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), dirPrefix) {
			continue
		}
		path := filepath.Join(m.root, entry.Name())
		if !m.sweepable(path) {
			m.logger.Warn("skipping non-workspace directory during sweep", "path", path)
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			m.logger.Warn("failed to remove orphaned workspace", "path", path, "error", err)
			continue
		}
		m.logger.Debug("removed orphaned workspace", "path", path)
	}
}

// sweepable reports whether path holds a git repository or nothing at all.
func (m *Manager) sweepable(path string) bool {
	if _, err := git.PlainOpen(path); err == nil {
		return true
	}
	entries, err := os.ReadDir(path)
	return err == nil && len(entries) == 0
}
