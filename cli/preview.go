package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fkorte/briefroll/render/escpos"
)

func init() {
	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Decode an ESC/POS stream into readable text",
		Long: `Prints a command stream with control sequences shown as bracketed
markers, e.g. [align center] or [size 2x2]. Without an argument the
configured ESC/POS output file is decoded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			path := a.cfg.Outputs.ESCPOS
			if len(args) == 1 {
				path = args[0]
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read stream: %w", err)
			}
			fmt.Println(escpos.Decode(data))
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
