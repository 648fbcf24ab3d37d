package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryan-buckman/newsfront/internal/opml"
)

var (
	sourceTitle    string
	sourceCategory string
	sourceLocation string
	exportPath     string
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage the feeds the news API ingests",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		sources, err := db.GetSources()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tURL\tLAST ERROR")
		for _, s := range sources {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Category, s.URL, s.LastError)
		}
		return tw.Flush()
	},
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add <feed-url>",
	Short: "Add one source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		title := sourceTitle
		if title == "" {
			// Replaced by the feed's own title on first fetch.
			title = args[0]
		}
		id, isNew, err := db.GetOrCreateSource(title, args[0], sourceCategory, sourceLocation)
		if err != nil {
			return fmt.Errorf("add source: %w", err)
		}
		if !isNew {
			fmt.Fprintf(cmd.OutOrStdout(), "source %d already exists\n", id)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added source %d\n", id)
		return nil
	},
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a source and its articles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid source id %q", args[0])
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		src, err := db.GetSourceByID(id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("source %d not found", id)
		}
		if err != nil {
			return err
		}
		if err := db.DeleteSource(id); err != nil {
			return fmt.Errorf("remove source: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", src.Title)
		return nil
	},
}

var sourcesImportCmd = &cobra.Command{
	Use:   "import <file.opml>",
	Short: "Add sources from an OPML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		entries, err := opml.Parse(f)
		if err != nil {
			return err
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		imported := 0
		for _, e := range entries {
			_, isNew, err := db.GetOrCreateSource(e.Title, e.URL, e.Category, sourceLocation)
			if err != nil {
				log.Error("Error creating source", "url", e.URL, "error", err)
				continue
			}
			if isNew {
				imported++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d sources\n", imported, len(entries))
		return nil
	},
}

var sourcesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all sources as OPML",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		sources, err := db.GetSources()
		if err != nil {
			return err
		}
		data, err := opml.Export("newsfront sources", sources, time.Now())
		if err != nil {
			return fmt.Errorf("export opml: %w", err)
		}
		if exportPath == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		return os.WriteFile(exportPath, data, 0o644)
	},
}

func init() {
	sourcesAddCmd.Flags().StringVar(&sourceTitle, "title", "", "display title (default: the feed's title)")
	sourcesAddCmd.Flags().StringVar(&sourceCategory, "category", "", "category, e.g. politics")
	sourcesAddCmd.Flags().StringVar(&sourceLocation, "location", "", "byline location for the source's articles")
	sourcesImportCmd.Flags().StringVar(&sourceLocation, "location", "", "byline location for imported sources")
	sourcesExportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "write to file instead of stdout")

	sourcesCmd.AddCommand(sourcesListCmd, sourcesAddCmd, sourcesRemoveCmd, sourcesImportCmd, sourcesExportCmd)
}
