package dedup

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpscan/fpscan/internal/analyzer"
)

var DedupCmd = &cobra.Command{
	Use:                   "dedup FINDINGS_FILE",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Removes duplicate findings that share the same raw secret",
	Args:                  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := analyzer.Deduplicate(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Findings: %d, unique: %d, duplicates removed: %d\n",
			stats.Original, stats.Unique, stats.Duplicates)
		fmt.Printf("Wrote %s\n", stats.OutputPath)
		return nil
	},
}
