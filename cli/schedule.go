package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/fkorte/briefroll/logger"
)

func init() {
	var (
		at   string
		spec string
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the brief every morning on a schedule",
		Long: `Arms a cron schedule in the configured timezone and runs the full
pipeline, including printing, on every tick. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			expr := spec
			if at != "" {
				expr, err = cronFromClock(at)
				if err != nil {
					return err
				}
			}
			return a.runSchedule(cmd.Context(), expr)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", `daily print time as HH:MM, shorthand for "M H * * *"`)
	cmd.Flags().StringVar(&spec, "cron", "0 7 * * *", "five-field cron expression")
	rootCmd.AddCommand(cmd)
}

func cronFromClock(at string) (string, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return "", fmt.Errorf("--at wants HH:MM, got %q", at)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}

func (a *app) runSchedule(ctx context.Context, expr string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(a.cfg.Location()),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)
	_, err := c.AddFunc(expr, func() {
		if _, err := a.runBrief(context.Background(), true); err != nil {
			a.log.Error("scheduled brief failed", logger.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", expr, err)
	}

	a.log.Info("schedule armed",
		logger.String("cron", expr),
		logger.String("timezone", a.cfg.Timezone),
	)
	c.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	select {
	case <-ctx.Done():
	case sig := <-sigCh:
		a.log.Info("shutdown signal received", logger.String("signal", sig.String()))
	}

	<-c.Stop().Done()
	return nil
}
