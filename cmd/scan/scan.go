package scan

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fpscan/fpscan/internal/detect"
	"github.com/fpscan/fpscan/internal/findings"
	"github.com/fpscan/fpscan/internal/gitexec"
	"github.com/fpscan/fpscan/internal/notify"
	"github.com/fpscan/fpscan/internal/orchestrator"
	"github.com/fpscan/fpscan/internal/workspace"
	"github.com/fpscan/fpscan/pkg/shared"
	"github.com/fpscan/fpscan/pkg/shared/config"
	"github.com/fpscan/fpscan/pkg/shared/logger"
)

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	EventsFile string
	DBConn     string
	MaxWorkers int
	Output     string
}

var (
	AppConfig        *config.Config
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scanning an organization's force-push events loaded from a CSV export
  fpscan scan --events-file events.csv robotcorp

  # Scanning with events loaded from the Postgres event store
  fpscan scan --db postgres://fpscan@localhost/fpevents robotcorp

  # Scanning with eight concurrent repository workers and a custom output file
  fpscan scan --events-file events.csv -j 8 -o results/robotcorp.json robotcorp`
)

var ScanCmd = &cobra.Command{
	Use:                   "scan {--events-file/-f PATH | --db DSN} [-j WORKERS] [-o OUTPUT] ORG",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Scans an organization's force-pushed commits for verified secrets",
	RunE:                  runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func init() {
	ScanCmd.Flags().StringVarP(&scanOptions.EventsFile, "events-file", "f", "", "path to a CSV export of force-push events")
	ScanCmd.Flags().StringVar(&scanOptions.DBConn, "db", "", "Postgres DSN of the force-push event store")
	ScanCmd.Flags().IntVarP(&scanOptions.MaxWorkers, "jobs", "j", 4, "number of concurrent repository workers")
	ScanCmd.Flags().StringVarP(&scanOptions.Output, "output", "o", "", "findings output file (default <results-dir>/<org>_findings.json)")
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	log := logger.NewLogger(AppConfig, "core-scan")

	if err := validateScanArgs(&scanOptions, AppConfig, args); err != nil {
		log.Error("invalid scan arguments", "error", err)
		return err
	}
	org := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	targets, err := gatherTargets(ctx, &scanOptions, AppConfig, org)
	if err != nil {
		log.Error("failed to gather force-push events", "org", org, "error", err)
		return err
	}
	log.Info("gathered scan targets", "org", org, "repositories", len(targets))

	runner := gitexec.NewRunner(config.GetGitCommandTimeout(AppConfig), log.Named("git"))
	client := gitexec.NewClient(runner, config.GetCloneDepth(AppConfig), log.Named("git"))
	resolver := gitexec.NewResolver(client, log.Named("resolver"))
	invoker := detect.NewInvoker(
		AppConfig.Scanner.BinPath,
		budgetPolicy(AppConfig),
		retryPolicy(AppConfig),
		log.Named("detect"),
	)

	sinkPath := resultsPath(&scanOptions, AppConfig, org)
	sink := findings.NewSink(sinkPath, log.Named("sink"))

	notifier := notify.NewProcessNotifier(AppConfig.Notifier.Command, AppConfig.Notifier.TempTTL, log.Named("notify"))
	gate := notify.NewGate(notifier, log.Named("notify"))

	orch := &orchestrator.Orchestrator{
		MaxWorkers: scanOptions.MaxWorkers,
		Workspaces: workspace.NewManager(config.GetWorkspaceRoot(AppConfig), log.Named("workspace")),
		Git:        client,
		Resolver:   resolver,
		Scanner:    invoker,
		Sink:       sink,
		Gate:       gate,
		Logger:     log.Named("orchestrator"),
	}

	summary, err := orch.Run(ctx, org, targets)
	if err != nil {
		log.Error("scan failed", "org", org, "error", err)
		return err
	}

	fmt.Printf("\nScanned %d repositories (%d commits) in %s\n",
		summary.Repositories, summary.CommitsScanned, summary.Elapsed.Round(time.Second))
	if summary.FindingsEmitted > 0 {
		fmt.Printf("Verified findings: %d -> %s\n", summary.FindingsEmitted, sinkPath)
	} else {
		fmt.Println("No verified findings.")
	}
	return nil
}
