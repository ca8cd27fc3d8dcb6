package diff

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpscan/fpscan/internal/analyzer"
)

var DiffCmd = &cobra.Command{
	Use:                   "diff BASELINE_FILE NEW_FILE",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Compares two findings files and reports new and resolved findings",
	Args:                  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := analyzer.Diff(args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Carried over: %d, new: %d, resolved: %d\n",
			res.Matched, len(res.New), len(res.Resolved))
		if len(res.New) > 0 {
			fmt.Println("\nNew findings:")
			for _, m := range res.New {
				fmt.Printf("  %s %s in %s (%s)\n", m.FindingID, m.Detector, m.RepositoryURL, m.File)
			}
		}
		if len(res.Resolved) > 0 {
			fmt.Println("\nResolved findings:")
			for _, m := range res.Resolved {
				fmt.Printf("  %s %s in %s (%s)\n", m.FindingID, m.Detector, m.RepositoryURL, m.File)
			}
		}
		return nil
	},
}
