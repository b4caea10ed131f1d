package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newCrawlCmd creates the 'crawl' subcommand, which downloads the tide table
// once and writes the station's CSV and metadata artifacts.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Download the yearly tide table and save the station's records",
		Long: `Fetches the Hong Kong Observatory yearly tide table, extracts the
configured station (QUB by default) and writes a detailed CSV, a simple
year/mean-sea-level CSV and a metadata JSON file through the configured
storage backend. A completion message is published when pubsub.topic_name
is set.`,
		Args: cobra.NoArgs,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.Logger()

	result, err := appInstance.Crawler().Run(cmd.Context())
	if err != nil {
		return cleanExit(logger, err)
	}
	for _, art := range result.Artifacts {
		fmt.Fprintln(cmd.OutOrStdout(), art.URI)
	}
	logger.Info("Crawl command finished.",
		zap.String("run_id", result.RunID),
		zap.Int("records", result.Dataset.Len()),
	)
	return nil
}
