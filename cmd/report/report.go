package report

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fpscan/fpscan/internal/analyzer"
	"github.com/fpscan/fpscan/internal/events"
	"github.com/fpscan/fpscan/pkg/shared/config"
	"github.com/fpscan/fpscan/pkg/shared/logger"
)

// RunOptionsReport holds the arguments for the report command.
type RunOptionsReport struct {
	EventsFile string
	DBConn     string
}

var (
	AppConfig     *config.Config
	reportOptions RunOptionsReport
)

var ReportCmd = &cobra.Command{
	Use:                   "report {--events-file/-f PATH | --db DSN} ORG",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Summarizes an organization's force-push events without scanning",
	RunE:                  runReportCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func init() {
	ReportCmd.Flags().StringVarP(&reportOptions.EventsFile, "events-file", "f", "", "path to a CSV export of force-push events")
	ReportCmd.Flags().StringVar(&reportOptions.DBConn, "db", "", "Postgres DSN of the force-push event store")
}

func runReportCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "core-report")

	if len(args) != 1 || args[0] == "" {
		return fmt.Errorf("exactly one organization argument is required")
	}
	org := args[0]

	ctx := context.Background()
	targets, err := gatherTargets(ctx, org)
	if err != nil {
		log.Error("failed to gather force-push events", "org", org, "error", err)
		return err
	}

	analyzer.WriteReport(os.Stdout, org, targets)
	return nil
}

func gatherTargets(ctx context.Context, org string) ([]events.Target, error) {
	if reportOptions.EventsFile != "" {
		return events.GatherFromCSV(reportOptions.EventsFile, org)
	}

	dsn := reportOptions.DBConn
	if dsn == "" {
		dsn = AppConfig.EventsDB.DSN
	}
	if dsn == "" {
		return nil, fmt.Errorf("an event source is required: --events-file, --db, or events_db.dsn in the config")
	}
	pool, err := events.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to event store: %w", err)
	}
	defer pool.Close()
	return events.NewStore(pool).Gather(ctx, org)
}
