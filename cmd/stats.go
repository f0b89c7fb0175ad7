package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/poligraft/internal/monitoring"
)

var (
	statsLookbackHours int
	statsFormat        string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recent results",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snap, err := monitoring.NewCollector(st, nil).Collect(ctx, statsLookbackHours)
		if err != nil {
			return eris.Wrap(err, "stats")
		}

		if statsFormat == "table" {
			formatStats(cmd.OutOrStdout(), snap)
			return nil
		}
		return writeOutput(cmd.OutOrStdout(), snap, statsFormat)
	},
}

func formatStats(w io.Writer, snap *monitoring.MetricsSnapshot) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Lookback:\t%dh\n", snap.LookbackHours)
	fmt.Fprintf(tw, "Total:\t%d\n", snap.Total)
	fmt.Fprintf(tw, "Processed:\t%d\n", snap.Processed)
	fmt.Fprintf(tw, "Pending:\t%d\n", snap.Pending)
	fmt.Fprintf(tw, "Stale:\t%d\n", snap.Stale)
	fmt.Fprintf(tw, "Entities:\t%d\n", snap.Entities)
	fmt.Fprintf(tw, "Politicians:\t%d\n", snap.Politicians)
	fmt.Fprintf(tw, "Contributions:\t%d\n", snap.Contributions)

	statuses := make([]string, 0, len(snap.ByStatus))
	for s := range snap.ByStatus {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Fprintf(tw, "  %s:\t%d\n", s, snap.ByStatus[s])
	}
	_ = tw.Flush()
}

func init() {
	statsCmd.Flags().IntVar(&statsLookbackHours, "lookback-hours", 24, "window of results to summarize")
	statsCmd.Flags().StringVar(&statsFormat, "format", "table", "output format (table, json or yaml)")
	rootCmd.AddCommand(statsCmd)
}
