package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fpscan/fpscan/cmd/dedup"
	"github.com/fpscan/fpscan/cmd/diff"
	"github.com/fpscan/fpscan/cmd/export"
	"github.com/fpscan/fpscan/cmd/orgs"
	"github.com/fpscan/fpscan/cmd/repair"
	"github.com/fpscan/fpscan/cmd/report"
	"github.com/fpscan/fpscan/cmd/scan"
	"github.com/fpscan/fpscan/cmd/stars"
	"github.com/fpscan/fpscan/cmd/upload"
	"github.com/fpscan/fpscan/cmd/version"
	"github.com/fpscan/fpscan/pkg/shared/config"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "fpscan [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Fpscan scans force-pushed (discarded) git history for verified secrets.",
		Long: `Fpscan recovers commits that were overwritten by force pushes and runs a
secret detection tool over the discarded history, aggregating the verified
findings per organization.`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(
		scan.ScanCmd,
		report.ReportCmd,
		stars.StarsCmd,
		orgs.OrgsCmd,
		dedup.DedupCmd,
		diff.DiffCmd,
		repair.RepairCmd,
		export.ExportCmd,
		upload.UploadCmd,
		version.NewVersionCmd(),
	)
}

func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.NewConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %q: %v\n", cfgFile, err)
		os.Exit(1)
	}

	scan.Init(AppConfig)
	report.Init(AppConfig)
	stars.Init(AppConfig)
	orgs.Init(AppConfig)
	upload.Init(AppConfig)
}
