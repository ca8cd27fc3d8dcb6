// Package orchestrator fans repository scan workers out over a bounded pool
// and aggregates their results. One task per repository; tasks run to
// completion independently and a failing task never takes its siblings down.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/fpscan/fpscan/internal/events"
	"github.com/fpscan/fpscan/internal/findings"
	"github.com/fpscan/fpscan/internal/notify"
	"github.com/fpscan/fpscan/internal/workspace"
)

// progress is reported every this many task completions, and on the last one
const progressEvery = 10

// Summary aggregates one orchestration pass.
type Summary struct {
	Org             string
	Repositories    int
	CommitsScanned  int
	FindingsEmitted int
	Elapsed         time.Duration
}

// Orchestrator wires the shared run state (sink, gate, workspaces) to a pool
// of per-repository workers.
type Orchestrator struct {
	MaxWorkers int
	Workspaces *workspace.Manager
	Git        GitClient
	Resolver   BaseResolver
	Scanner    Scanner
	Sink       *findings.Sink
	Gate       *notify.Gate
	Logger     hclog.Logger
}

// Run scans all targets of org and returns the run summary. The findings
// sink is opened before the first task and closed exactly once afterwards;
// orphaned workspaces are swept both before and after the pass.
func (o *Orchestrator) Run(ctx context.Context, org string, targets []events.Target) (Summary, error) {
	start := time.Now()
	summary := Summary{Org: org}

	o.Workspaces.Sweep()

	if err := o.Sink.Open(); err != nil {
		return summary, err
	}
	defer o.Sink.Close()

	worker := &Worker{
		Org:        org,
		Workspaces: o.Workspaces,
		Git:        o.Git,
		Resolver:   o.Resolver,
		Scanner:    o.Scanner,
		Sink:       o.Sink,
		Gate:       o.Gate,
		Logger:     o.Logger.Named("worker"),
	}

	total := len(targets)
	o.Logger.Info("scan starting", "org", org, "repositories", total, "workers", o.MaxWorkers)

	limit := o.MaxWorkers
	if limit < 1 {
		limit = 1
	}
	guard := make(chan struct{}, limit)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)

	for _, target := range targets {
		guard <- struct{}{}
		wg.Add(1)
		go func(target events.Target) {
			defer wg.Done()
			defer func() { <-guard }()

			result := o.runTask(ctx, worker, target)

			mu.Lock()
			completed++
			summary.Repositories++
			summary.CommitsScanned += result.CommitsScanned
			summary.FindingsEmitted += result.FindingsEmitted
			if completed%progressEvery == 0 || completed == total {
				o.Logger.Info("progress",
					"completed", completed, "total", total,
					"elapsed", time.Since(start).Round(time.Second))
			}
			mu.Unlock()
		}(target)
	}
	wg.Wait()

	if err := o.Sink.Close(); err != nil {
		o.Logger.Warn("failed to finalize findings file", "error", err)
	}
	o.Workspaces.Sweep()

	summary.Elapsed = time.Since(start)
	o.logSummary(summary)
	return summary, nil
}

// runTask contains a single repository attempt, including panics: an
// unexpected failure contributes zero to the totals and is logged.
func (o *Orchestrator) runTask(ctx context.Context, worker *Worker, target events.Target) (result AttemptResult) {
	defer func() {
		if r := recover(); r != nil {
			o.Logger.Error("repository task failed unexpectedly", "repo", target.URL, "panic", r)
			result = AttemptResult{RepoURL: target.URL}
		}
	}()
	return worker.Run(ctx, target)
}

func (o *Orchestrator) logSummary(s Summary) {
	o.Logger.Info("scan completed",
		"org", s.Org,
		"repositories", s.Repositories,
		"commits_scanned", s.CommitsScanned,
		"findings", s.FindingsEmitted,
		"elapsed", s.Elapsed.Round(time.Second))
	if s.FindingsEmitted > 0 {
		o.Logger.Info("verified secrets saved", "count", s.FindingsEmitted, "path", o.Sink.Path())
	} else {
		o.Logger.Info("no verified secrets found", "org", s.Org)
	}
}
