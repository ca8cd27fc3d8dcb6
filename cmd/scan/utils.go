package scan

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fpscan/fpscan/internal/detect"
	"github.com/fpscan/fpscan/internal/events"
	"github.com/fpscan/fpscan/pkg/shared/config"
)

// gatherTargets loads an organization's force-push events from the selected
// source: a CSV export, a DSN given on the command line, or the configured
// event store.
func gatherTargets(ctx context.Context, options *RunOptionsScan, cfg *config.Config, org string) ([]events.Target, error) {
	if options.EventsFile != "" {
		return events.GatherFromCSV(options.EventsFile, org)
	}

	dsn := options.DBConn
	if dsn == "" {
		dsn = cfg.EventsDB.DSN
	}
	pool, err := events.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to event store: %w", err)
	}
	defer pool.Close()
	return events.NewStore(pool).Gather(ctx, org)
}

// resultsPath picks the findings output file: the explicit flag, or
// <results-dir>/<org>_findings.json.
func resultsPath(options *RunOptionsScan, cfg *config.Config, org string) string {
	if options.Output != "" {
		return options.Output
	}
	return filepath.Join(config.GetResultsHome(cfg), fmt.Sprintf("%s_findings.json", org))
}

// budgetPolicy builds the scan budget policy from config, falling back to
// the built-in baseline and cap.
func budgetPolicy(cfg *config.Config) detect.BudgetPolicy {
	policy := detect.DefaultBudgetPolicy()
	if cfg.Scanner.BaseTimeout > 0 {
		policy.Base = cfg.Scanner.BaseTimeout
	}
	if cfg.Scanner.MaxTimeout > 0 {
		policy.Cap = cfg.Scanner.MaxTimeout
	}
	return policy
}

func retryPolicy(cfg *config.Config) detect.RetryPolicy {
	policy := detect.DefaultRetryPolicy()
	if cfg.Scanner.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.Scanner.MaxAttempts
	}
	return policy
}
