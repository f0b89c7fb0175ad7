package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/poligraft/internal/enrich"
)

var (
	runURL          string
	runText         string
	runSuppressText bool
	runTextOnly     bool
	runFormat       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Annotate a single article or text and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if runURL == "" && runText == "" {
			return eris.New("one of --url or --text is required")
		}
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		env := initPipeline(st)

		res, err := env.Creator.Create(ctx, enrich.CreateInput{
			URL:          runURL,
			Text:         runText,
			SuppressText: runSuppressText,
			TextOnly:     runTextOnly,
		})
		if err != nil {
			return eris.Wrap(err, "create result")
		}

		if !res.Processed {
			if err := env.Processor.Process(ctx, res); err != nil {
				return eris.Wrap(err, "process result")
			}
		}

		zap.L().Info("result complete",
			zap.String("slug", res.Slug),
			zap.String("status", string(res.Status)),
			zap.Int("entities", len(res.Entities)),
			zap.Int("contribution_count", res.ContributionCount),
		)

		return writeOutput(cmd.OutOrStdout(), res.View(), runFormat)
	},
}

func init() {
	runCmd.Flags().StringVar(&runURL, "url", "", "article URL to fetch")
	runCmd.Flags().StringVar(&runText, "text", "", "text to annotate (wins over --url)")
	runCmd.Flags().BoolVar(&runSuppressText, "suppress-text", false, "drop the source text once processed")
	runCmd.Flags().BoolVar(&runTextOnly, "text-only", false, "store the text without annotating it")
	runCmd.Flags().StringVar(&runFormat, "format", "json", "output format (json or yaml)")
	rootCmd.AddCommand(runCmd)
}
