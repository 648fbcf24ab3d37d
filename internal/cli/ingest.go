package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryan-buckman/newsfront/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch every source once and store new articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signalContext()
		defer stop()

		results, err := ingest.NewFetcher(db, log, fetcherOptions()...).FetchAll(ctx)
		if err != nil {
			return err
		}
		total := 0
		for _, c := range results {
			total += c
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d new articles from %d sources\n", total, len(results))
		return nil
	},
}
