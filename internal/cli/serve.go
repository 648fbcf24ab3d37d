package cli

import (
	"github.com/spf13/cobra"

	"github.com/bryan-buckman/newsfront/internal/newsapi"
	"github.com/bryan-buckman/newsfront/internal/server"
	"github.com/bryan-buckman/newsfront/internal/view"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the news frontend",
	RunE: func(cmd *cobra.Command, args []string) error {
		fc := cfg.Frontend
		if serveAddr != "" {
			fc.Addr = serveAddr
		}

		client := newsapi.NewClient(fc.NewsAPIURL, newsapi.WithTimeout(fc.FetchTimeout))
		views := view.NewRegistry(client, log, fc.MaxViews, fc.ViewTTL)
		defer views.Close()

		srv, err := server.New(views, server.Options{LoadWait: fc.LoadWait}, log)
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		log.Info("Fetching news from", "url", client.URL())
		if err := srv.Run(ctx, fc.Addr); err != nil {
			return err
		}
		log.Info("Frontend stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides NEWSFRONT_ADDR)")
}
