package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	var print bool
	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Generate today's brief and write all outputs",
		Long: `Fetches weather, mail, calendar and task data, composes the brief and
writes the PNG preview, the plain-text mirror and the ESC/POS stream.
The written paths are printed to stdout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			report, err := a.runBrief(cmd.Context(), print)
			if err != nil {
				return err
			}
			for _, out := range report.Outputs {
				fmt.Println(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&print, "print", false, "also send the command stream to the printer")
	rootCmd.AddCommand(cmd)
}
