package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/bryan-buckman/newsfront/internal/database"
)

// fetchAllTimeout bounds one polling round.
const fetchAllTimeout = 10 * time.Minute

// Poller fetches all sources in rounds until its context ends.
type Poller struct {
	fetcher  *Fetcher
	db       database.Store
	logger   *slog.Logger
	interval time.Duration // lower bound; the stored setting may raise it
}

// NewPoller creates a poller. opts configure its Fetcher.
func NewPoller(db database.Store, interval time.Duration, logger *slog.Logger, opts ...Option) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		fetcher:  NewFetcher(db, logger, opts...),
		db:       db,
		logger:   logger,
		interval: interval,
	}
}

// Run polls until ctx is done. The first round starts immediately.
func (p *Poller) Run(ctx context.Context) error {
	for {
		interval := p.nextInterval()
		p.logger.Info("Poller: fetching all sources", "interval", interval)

		roundCtx, cancel := context.WithTimeout(ctx, fetchAllTimeout)
		results, err := p.fetcher.FetchAll(roundCtx)
		cancel()

		if err != nil {
			p.logger.Error("Poller error", "error", err)
		} else {
			total := 0
			for _, c := range results {
				total += c
			}
			p.logger.Info("Poller: round complete", "new_articles", total, "sources", len(results))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// nextInterval is the larger of the configured interval and the stored
// polling_interval_minutes setting, re-read every round.
func (p *Poller) nextInterval() time.Duration {
	mins, _ := p.db.GetPollingInterval()
	if mins < database.MinPollingIntervalMinutes {
		mins = database.MinPollingIntervalMinutes
	}
	stored := time.Duration(mins) * time.Minute
	if p.interval > stored {
		return p.interval
	}
	return stored
}
