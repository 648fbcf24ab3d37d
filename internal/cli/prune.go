package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pruneOlderThan time.Duration

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete stored articles published before a cutoff",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pruneOlderThan <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.DeleteArticlesBefore(time.Now().Add(-pruneOlderThan))
		if err != nil {
			return fmt.Errorf("prune articles: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d articles\n", n)
		return nil
	},
}

func init() {
	pruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 30*24*time.Hour, "age cutoff by publish time")
}
