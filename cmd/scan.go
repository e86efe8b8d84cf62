package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dartwatch/dartwatch/internal/model"
)

var (
	scanFrom   string
	scanTo     string
	scanFormat string
	scanOutput string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Evaluate filings without sending anything",
	Long: "Runs the full classification and scoring pass in dry-run mode and " +
		"prints the accepted filings. Nothing is sent and the seen state is " +
		"not touched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if scanFormat != "table" && scanFormat != "csv" {
			return eris.Errorf("unknown format %q (table or csv)", scanFormat)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var alerts []model.Alert
		p, st, err := initPipeline(ctx, true, func(a model.Alert) {
			alerts = append(alerts, a)
		})
		if err != nil {
			return err
		}
		defer st.Close()

		from, to := dateRange(scanFrom, scanTo)
		sum, err := p.Run(ctx, from, to)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if scanOutput != "" {
			f, err := os.Create(scanOutput)
			if err != nil {
				return eris.Wrapf(err, "create output file %s", scanOutput)
			}
			defer f.Close()
			out = f
		}

		if scanFormat == "csv" {
			if err := writeAlertCSV(out, alerts); err != nil {
				return err
			}
		} else {
			printAlertTable(out, alerts)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%d fetched, %d accepted, %d excluded, %d already seen\n",
			sum.Fetched, sum.Considered, sum.Excluded, sum.Seen)
		return nil
	},
}

func printAlertTable(out io.Writer, alerts []model.Alert) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tCOMPANY\tTYPE\tTIER\tSCORE\tTITLE")
	for _, a := range alerts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			a.Filing.ReceivedDate, a.Filing.CompanyName, a.Type,
			a.Risk.Tier, a.Risk.Score, a.Filing.Title)
	}
	w.Flush()
}

func writeAlertCSV(out io.Writer, alerts []model.Alert) error {
	w := csv.NewWriter(out)
	header := []string{"date", "company", "market", "type", "tier", "score", "title", "url"}
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "write csv header")
	}
	for _, a := range alerts {
		row := []string{
			a.Filing.ReceivedDate,
			a.Filing.CompanyName,
			string(a.Filing.Market),
			string(a.Type),
			string(a.Risk.Tier),
			strconv.Itoa(a.Risk.Score),
			a.Filing.Title,
			a.ViewerURL,
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "write csv row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "flush csv")
}

func init() {
	scanCmd.Flags().StringVar(&scanFrom, "from", "", "start date YYYYMMDD (default: today minus lookback)")
	scanCmd.Flags().StringVar(&scanTo, "to", "", "end date YYYYMMDD (default: today)")
	scanCmd.Flags().StringVar(&scanFormat, "format", "table", "output format: table or csv")
	scanCmd.Flags().StringVar(&scanOutput, "output", "", "write output to file instead of stdout")
	rootCmd.AddCommand(scanCmd)
}
