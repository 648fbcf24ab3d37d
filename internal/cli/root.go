// Package cli contains the newsfront commands.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bryan-buckman/newsfront/internal/config"
	"github.com/bryan-buckman/newsfront/internal/database"
	"github.com/bryan-buckman/newsfront/internal/ingest"
	"github.com/bryan-buckman/newsfront/internal/logger"
)

var (
	envFile string
	cfg     *config.Config
	log     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "newsfront",
	Short: "Server-rendered news list and its companion news API",
	Long: `newsfront renders the latest articles from a news API as cards.

  newsfront serve              # frontend on NEWSFRONT_ADDR (default :3000)
  newsfront api                # news API + feed poller on NEWSAPI_ADDR (default :8000)
  newsfront ingest             # fetch all sources once
  newsfront sources import f   # add sources from an OPML file`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		var err error
		cfg, err = config.Load(files...)
		if err != nil {
			return err
		}
		log = logger.Init(cfg.Logging.Level, cfg.Logging.Format, cmd.Name())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env if present)")
	rootCmd.AddCommand(serveCmd, apiCmd, ingestCmd, pruneCmd, sourcesCmd, settingsCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func openStore() (database.Store, error) {
	db, err := database.Open(cfg.API.DatabaseURL, cfg.API.SQLitePath)
	if err != nil {
		return nil, err
	}
	log.Info("Using database", "type", db.DatabaseType())
	return db, nil
}

// fetcherOptions enables article page scraping when configured.
func fetcherOptions() []ingest.Option {
	sc := cfg.Scrape
	if !sc.Enabled {
		return nil
	}
	return []ingest.Option{ingest.WithPageScraper(ingest.NewPageScraper(ingest.Selectors{
		Headline:  sc.Headline,
		Author:    sc.Author,
		Location:  sc.Location,
		Published: sc.Published,
		Content:   sc.Content,
	}, sc.Timeout))}
}
