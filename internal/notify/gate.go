// Package notify fires an at-most-once-per-organization side effect on the
// first verified finding of a scan run. Dispatch is handed off to a detached
// task so scanning never waits on the notification collaborator.
package notify

import (
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/fpscan/fpscan/internal/findings"
)

// Dispatcher delivers one finding to the external notification collaborator.
type Dispatcher interface {
	Dispatch(org string, f *findings.Finding) error
}

// Gate tracks which organizations have already been notified in this run.
// One Gate belongs to one orchestration pass; concurrent organization scans
// get their own gates and cannot collide.
type Gate struct {
	mu         sync.Mutex
	notified   map[string]struct{}
	dispatcher Dispatcher
	logger     hclog.Logger
}

// NewGate returns an empty gate dispatching through d.
func NewGate(d Dispatcher, logger hclog.Logger) *Gate {
	return &Gate{
		notified:   make(map[string]struct{}),
		dispatcher: d,
		logger:     logger,
	}
}

// NotifyFirst fires the notification side effect if f is notification-worthy
// and org has not been notified yet in this run. The check-and-insert is
// atomic; the dispatch itself runs detached and its failures are only logged.
// Returns whether the notification fired.
func (g *Gate) NotifyFirst(org string, f *findings.Finding) bool {
	if !notifiable(f) {
		return false
	}

	g.mu.Lock()
	if _, seen := g.notified[org]; seen {
		g.mu.Unlock()
		return false
	}
	g.notified[org] = struct{}{}
	g.mu.Unlock()

	go func() {
		if err := g.dispatcher.Dispatch(org, f); err != nil {
			g.logger.Warn("notification dispatch failed", "org", org, "error", err)
		}
	}()
	return true
}

// notifiable requires the minimum fields a useful alert needs: the verified
// flag, a detector name, the raw secret, and commit identity.
func notifiable(f *findings.Finding) bool {
	return f != nil && f.Verified && f.DetectorName != "" && f.RawSecret() != "" && f.HasCommitMetadata()
}
