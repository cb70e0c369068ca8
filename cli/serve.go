package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fkorte/briefroll/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP console",
		Long: `Serves the console API: POST /api/daily-brief triggers a run that also
prints, GET /api/jobs/:id reports its progress, POST /api/print-text prints
a snippet, /healthz and /metrics round it out.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			srv := server.New(a.cfg, a.log, server.Deps{
				RunBrief: func(ctx context.Context) (*server.Report, error) {
					return a.runBrief(ctx, true)
				},
				PrintText: a.printText,
			})
			return srv.Run(cmd.Context())
		},
	}
	rootCmd.AddCommand(cmd)
}
