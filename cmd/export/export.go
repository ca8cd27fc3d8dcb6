package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpscan/fpscan/internal/analyzer"
)

var ExportCmd = &cobra.Command{
	Use:                   "export FINDINGS_FILE",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Converts a findings file to SARIF 2.1.0",
	Args:                  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := analyzer.ExportSARIF(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", out)
		return nil
	},
}
