package repair

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpscan/fpscan/internal/analyzer"
)

var RepairCmd = &cobra.Command{
	Use:                   "repair FINDINGS_FILE...",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Repairs findings files truncated by an interrupted scan",
	Args:                  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var failed int
		for _, path := range args {
			res, err := analyzer.Repair(path)
			switch {
			case err != nil:
				failed++
				fmt.Printf("%s: %v\n", path, err)
			case res.AlreadyValid:
				fmt.Printf("%s: already valid\n", path)
			default:
				fmt.Printf("%s: repaired (added %d '}' and %d ']')\n", path, res.CurlyAdded, res.SquareAdded)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d file(s) could not be repaired", failed)
		}
		return nil
	},
}
