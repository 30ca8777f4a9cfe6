// SPDX-License-Identifier: AGPL-3.0-only
package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/softpaws/postharvest/internal/config"
	"github.com/softpaws/postharvest/internal/history"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs from the local ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}

		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.RecentRuns(cmd.Context(), flagHistoryLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RECORDED\tLABEL\tBACKEND\tSTATUS\tITEMS\tRUN")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				e.RecordedAt.Format("2006-01-02 15:04"), e.Label, e.Backend, e.Status, e.Items, e.RunID)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "entries to show")
	rootCmd.AddCommand(historyCmd)
}
