package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newAnalyzeCmd creates the 'analyze' subcommand.
func newAnalyzeCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Write trend figures and a text report for the latest dataset",
		Long: `Computes long-term and recent trends, decadal averages, tidal ranges
and component correlations, then saves a comprehensive figure, a detailed
tidal figure (when tidal data exists) and a plain text report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			logger := appInstance.Logger()

			if input == "" {
				input = appInstance.Config().Analysis.Input
			}
			ds, err := appInstance.Source(input).Latest(cmd.Context())
			if err != nil {
				return cleanExit(logger, err)
			}

			result, err := appInstance.Analyzer().Run(cmd.Context(), ds)
			if err != nil {
				return cleanExit(logger, err)
			}
			for _, art := range result.Artifacts {
				fmt.Fprintln(cmd.OutOrStdout(), art.URI)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "dataset CSV (default: analysis.input or newest crawl in data.dir)")
	return cmd
}
