package scan

import (
	"fmt"

	"github.com/fpscan/fpscan/pkg/shared/config"
)

// validateScanArgs checks command-line arguments for the scan command.
func validateScanArgs(options *RunOptionsScan, cfg *config.Config, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return fmt.Errorf("exactly one organization argument is required")
	}
	if options.EventsFile != "" && options.DBConn != "" {
		return fmt.Errorf("--events-file and --db are mutually exclusive")
	}
	if options.EventsFile == "" && options.DBConn == "" && cfg.EventsDB.DSN == "" {
		return fmt.Errorf("an event source is required: --events-file, --db, or events_db.dsn in the config")
	}
	if options.MaxWorkers < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", options.MaxWorkers)
	}
	return nil
}
