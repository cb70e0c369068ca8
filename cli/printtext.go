package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "print-text [text...]",
		Short: "Print a text snippet",
		Long: `Sends a snippet to the printer through the regular layout pipeline,
so long lines wrap the same way a brief paragraph would. The text comes
from the arguments, or from stdin when none are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			if text == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}
			return a.printText(cmd.Context(), text)
		},
	}
	rootCmd.AddCommand(cmd)
}
