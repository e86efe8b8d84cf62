package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runFrom     string
	runTo       string
	runDryRun   bool
	runInterval int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan for new filings and send alerts",
	Long: "Runs one scan over the configured date window, or keeps polling " +
		"when an interval is set. --dry-run evaluates everything but sends " +
		"nothing and leaves the seen state untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, st, err := initPipeline(ctx, runDryRun, nil)
		if err != nil {
			return err
		}
		defer st.Close()

		interval := cfg.Poll.IntervalSecs
		if cmd.Flags().Changed("interval") {
			interval = runInterval
		}

		for {
			from, to := dateRange(runFrom, runTo)
			if _, err := p.Run(ctx, from, to); err != nil {
				if interval <= 0 {
					return err
				}
				// Keep polling through transient upstream outages.
				zap.L().Error("run failed", zap.Error(err))
			}

			if interval <= 0 {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Duration(interval) * time.Second):
			}
		}
	},
}

func init() {
	runCmd.Flags().StringVar(&runFrom, "from", "", "start date YYYYMMDD (default: today minus lookback)")
	runCmd.Flags().StringVar(&runTo, "to", "", "end date YYYYMMDD (default: today)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "evaluate without sending or marking seen")
	runCmd.Flags().IntVar(&runInterval, "interval", 0, "poll interval in seconds (overrides poll.interval_secs)")
	rootCmd.AddCommand(runCmd)
}
