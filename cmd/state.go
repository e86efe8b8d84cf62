package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dartwatch/dartwatch/internal/store"
)

var stateCompact bool

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or compact the seen-filings store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.Len(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "driver: %s\nseen filings: %d\nmax: %d\n",
			cfg.Store.Driver, n, cfg.Store.MaxSeen)

		if !stateCompact {
			return nil
		}

		dropped, err := st.Compact(ctx)
		if err != nil {
			return err
		}
		if err := st.Save(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "compacted: %d evicted\n", dropped)
		return nil
	},
}

func init() {
	stateCmd.Flags().BoolVar(&stateCompact, "compact", false, "evict oldest entries above the max")
	rootCmd.AddCommand(stateCmd)
}
