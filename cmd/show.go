package main

import (
	"errors"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/poligraft/internal/store"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Print a stored result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		res, err := st.GetResultBySlug(ctx, args[0])
		if errors.Is(err, store.ErrNotFound) {
			return eris.Errorf("no result with slug %q", args[0])
		}
		if err != nil {
			return eris.Wrap(err, "show result")
		}

		return writeOutput(cmd.OutOrStdout(), res.View(), showFormat)
	},
}

func init() {
	showCmd.Flags().StringVar(&showFormat, "format", "json", "output format (json or yaml)")
	rootCmd.AddCommand(showCmd)
}
