package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"price-tracker/internal/scraper"
)

func newSweepCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Check every active alert once and print the summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.newMonitor(cfg, log, nil).RunSweepNow(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "checked:      %d\n", summary.Checked)
			fmt.Fprintf(out, "drops:        %d\n", summary.Drops)
			fmt.Fprintf(out, "failed:       %d\n", summary.Failed)
			fmt.Fprintf(out, "skipped:      %d\n", summary.Skipped)
			fmt.Fprintf(out, "store errors: %d\n", summary.StoreErrors)
			fmt.Fprintf(out, "started:      %s\n", humanize.Time(summary.StartedAt))
			fmt.Fprintf(out, "took:         %s\n", summary.Duration.Round(time.Millisecond))
			return nil
		},
	}
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <url>",
		Short: "Print the platform a product URL belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, err := scraper.DetectPlatform(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), platform)
			return nil
		},
	}
}
