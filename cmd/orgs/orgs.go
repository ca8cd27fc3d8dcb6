package orgs

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fpscan/fpscan/internal/orgs"
	"github.com/fpscan/fpscan/pkg/shared/config"
	"github.com/fpscan/fpscan/pkg/shared/httpclient"
	"github.com/fpscan/fpscan/pkg/shared/logger"
)

// RunOptionsOrgs holds the arguments for the orgs command.
type RunOptionsOrgs struct {
	Output string
}

var (
	AppConfig   *config.Config
	orgsOptions RunOptionsOrgs
)

var OrgsCmd = &cobra.Command{
	Use:                   "orgs [-o OUTPUT]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Downloads the bug bounty organization catalog, one org per line",
	RunE:                  runOrgsCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func init() {
	OrgsCmd.Flags().StringVarP(&orgsOptions.Output, "output", "o", "", "output file (default stdout)")
}

func runOrgsCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "core-orgs")

	client := httpclient.InitializeRestyClient(log, AppConfig)
	fetcher := orgs.NewFetcher(client, log)

	all, err := fetcher.FetchAll(context.Background())
	if err != nil {
		log.Error("failed to fetch organization catalog", "error", err)
		return err
	}

	body := strings.Join(all, "\n") + "\n"
	if orgsOptions.Output == "" {
		fmt.Print(body)
		return nil
	}
	if err := os.WriteFile(orgsOptions.Output, []byte(body), 0644); err != nil {
		log.Error("failed to write organization list", "file", orgsOptions.Output, "error", err)
		return err
	}
	log.Info("saved organization list", "file", orgsOptions.Output, "orgs", len(all))
	return nil
}
