package orchestrator

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/fpscan/fpscan/internal/events"
	"github.com/fpscan/fpscan/internal/findings"
	"github.com/fpscan/fpscan/internal/gitexec"
	"github.com/fpscan/fpscan/internal/notify"
	"github.com/fpscan/fpscan/internal/workspace"
)

// GitClient is the clone-side surface a worker needs.
type GitClient interface {
	CloneShallow(ctx context.Context, dir, repoURL string) error
	CommitCount(ctx context.Context, dir, ref string) int
}

// BaseResolver recovers the pre-rewrite base commit for one push event.
type BaseResolver interface {
	ResolveBaseCommit(ctx context.Context, dir, ref string) (string, error)
}

// Scanner invokes the detection tool against a workspace.
type Scanner interface {
	Scan(ctx context.Context, dir, baseRef, branchRef string, commitHint int) ([]*findings.Finding, error)
}

// AttemptResult is what one repository contributed to the run.
type AttemptResult struct {
	RepoURL         string
	CommitsScanned  int
	FindingsEmitted int
}

// Worker processes one repository at a time: it owns a workspace for the
// duration of the attempt and walks the repository's push events strictly in
// input order, since they all share the same mutable clone.
type Worker struct {
	Org        string
	Workspaces *workspace.Manager
	Git        GitClient
	Resolver   BaseResolver
	Scanner    Scanner
	Sink       *findings.Sink
	Gate       *notify.Gate
	Logger     hclog.Logger
}

// Run scans every push event of target. Failures are contained: a failed
// clone yields a zero result, an unknown ref skips that event, and any other
// resolution failure abandons the remaining events of this repository only.
// The workspace is released no matter how the loop exits.
func (w *Worker) Run(ctx context.Context, target events.Target) AttemptResult {
	result := AttemptResult{RepoURL: target.URL}

	ws, err := w.Workspaces.Acquire()
	if err != nil {
		w.Logger.Error("failed to acquire workspace", "repo", target.URL, "error", err)
		return result
	}
	defer ws.Release()

	if err := w.Git.CloneShallow(ctx, ws.Path(), target.URL); err != nil {
		w.Logger.Warn("clone failed, skipping repository", "repo", target.URL, "error", err)
		return result
	}

	for _, event := range target.Events {
		if !events.ValidSHA(event.Before) {
			continue
		}
		result.CommitsScanned++

		base, err := w.Resolver.ResolveBaseCommit(ctx, ws.Path(), event.Before)
		if err != nil {
			if gitexec.IsUnknownRef(err) {
				w.Logger.Debug("ref unknown to remote, skipping event", "repo", target.URL, "ref", event.Before)
				continue
			}
			w.Logger.Error("base resolution failed, abandoning remaining events",
				"repo", target.URL, "ref", event.Before, "error", err)
			break
		}

		hint := w.Git.CommitCount(ctx, ws.Path(), event.Before)
		found, err := w.Scanner.Scan(ctx, ws.Path(), base, event.Before, hint)
		if err != nil {
			w.Logger.Warn("scan failed for event", "repo", target.URL, "ref", event.Before, "error", err)
			continue
		}

		scannedAt := time.Now()
		for _, f := range found {
			f.Enrich(target.URL, event.Before, scannedAt)
			if err := w.Sink.Append(f); err != nil {
				w.Logger.Error("failed to persist finding", "repo", target.URL, "error", err)
				continue
			}
			result.FindingsEmitted++
			w.Gate.NotifyFirst(w.Org, f)
			w.logFinding(f)
		}
	}

	return result
}

func (w *Worker) logFinding(f *findings.Finding) {
	w.Logger.Info("verified finding",
		"detector", f.DetectorName,
		"decoder", f.DecoderName,
		"repo", f.RepositoryURL,
		"commit", f.Commit,
		"file", f.File,
		"email", f.Email,
		"link", f.RepositoryURL+"/commit/"+f.Commit,
	)
}
