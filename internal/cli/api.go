package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bryan-buckman/newsfront/internal/backend"
	"github.com/bryan-buckman/newsfront/internal/ingest"
)

var (
	apiAddr string
	noPoll  bool
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the news API and the source poller",
	RunE: func(cmd *cobra.Command, args []string) error {
		ac := cfg.API
		if apiAddr != "" {
			ac.Addr = apiAddr
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		srv := backend.New(db, backend.Options{
			PageSize:       ac.PageSize,
			RateLimitRPS:   ac.RateLimitRPS,
			RateLimitBurst: ac.RateLimitBurst,
			TrustProxy:     ac.TrustProxy,
		}, log)

		ctx, stop := signalContext()
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			err := srv.Run(ctx, ac.Addr)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
		if !noPoll {
			poller := ingest.NewPoller(db, ac.PollInterval, log, fetcherOptions()...)
			g.Go(func() error { return poller.Run(ctx) })
		}

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Info("News API stopped")
		return nil
	},
}

func init() {
	apiCmd.Flags().StringVar(&apiAddr, "addr", "", "listen address (overrides NEWSAPI_ADDR)")
	apiCmd.Flags().BoolVar(&noPoll, "no-poll", false, "serve stored articles without polling sources")
}
