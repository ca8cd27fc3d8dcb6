package stars

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fpscan/fpscan/internal/events"
	"github.com/fpscan/fpscan/internal/stars"
	"github.com/fpscan/fpscan/pkg/shared/config"
	"github.com/fpscan/fpscan/pkg/shared/logger"
)

// RunOptionsStars holds the arguments for the stars command.
type RunOptionsStars struct {
	DBConn   string
	Token    string
	Workers  int
	UpdateDB bool
}

var (
	AppConfig    *config.Config
	starsOptions RunOptionsStars
)

var StarsCmd = &cobra.Command{
	Use:                   "stars --db DSN [--token TOKEN] [-j WORKERS] [--update-db] ORG",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Fetches GitHub star counts for an organization's force-pushed repositories",
	RunE:                  runStarsCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func init() {
	StarsCmd.Flags().StringVar(&starsOptions.DBConn, "db", "", "Postgres DSN of the force-push event store")
	StarsCmd.Flags().StringVar(&starsOptions.Token, "token", "", "GitHub token (defaults to GITHUB_TOKEN)")
	StarsCmd.Flags().IntVarP(&starsOptions.Workers, "jobs", "j", 8, "number of concurrent API requests")
	StarsCmd.Flags().BoolVar(&starsOptions.UpdateDB, "update-db", false, "write star counts back to the event store")
}

func runStarsCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "core-stars")

	if len(args) != 1 || args[0] == "" {
		return fmt.Errorf("exactly one organization argument is required")
	}
	org := args[0]

	dsn := starsOptions.DBConn
	if dsn == "" {
		dsn = AppConfig.EventsDB.DSN
	}
	if dsn == "" {
		return fmt.Errorf("an event store is required: --db or events_db.dsn in the config")
	}

	token := starsOptions.Token
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		log.Warn("no GitHub token provided, anonymous API limits apply")
	}

	ctx := context.Background()
	pool, err := events.Connect(ctx, dsn)
	if err != nil {
		log.Error("failed to connect to event store", "error", err)
		return err
	}
	defer pool.Close()
	store := events.NewStore(pool)

	pairs, err := store.DistinctRepos(ctx, org)
	if err != nil {
		log.Error("failed to list repositories", "org", org, "error", err)
		return err
	}
	repos := make([]string, len(pairs))
	for i, p := range pairs {
		repos[i] = p[1]
	}
	log.Info("fetching star counts", "org", org, "repositories", len(repos), "workers", starsOptions.Workers)

	counter := stars.NewCounter(token, starsOptions.Workers, log)
	counts := counter.CountAll(ctx, org, repos)

	missing := 0
	for _, c := range counts {
		if !c.Found {
			missing++
			continue
		}
		fmt.Printf("%s/%s,%d\n", c.Org, c.Repo, c.Stars)
		if starsOptions.UpdateDB {
			if err := store.UpdateStars(ctx, c.Org, c.Repo, c.Stars); err != nil {
				log.Warn("failed to update star count", "repo", c.Repo, "error", err)
			}
		}
	}
	if missing > 0 {
		log.Info("repositories no longer resolvable", "count", missing)
	}
	return nil
}
