// Package ingest fetches RSS/Atom sources and stores their entries as articles.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/bryan-buckman/newsfront/internal/database"
	"github.com/bryan-buckman/newsfront/internal/metrics"
	"github.com/bryan-buckman/newsfront/internal/model"
)

const (
	// workersPostgres bounds parallel source fetches when the store takes
	// concurrent writes.
	workersPostgres = 10
	// hostInterval is the minimum spacing between requests to one host.
	hostInterval = 500 * time.Millisecond
	// maxErrorLen bounds the error text recorded on a source.
	maxErrorLen = 200
)

// Fetcher pulls sources into the store.
type Fetcher struct {
	db      database.Store
	parser  *gofeed.Parser
	workers int
	hosts   *hostLimiter
	pages   *PageScraper
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithPageScraper makes the fetcher read each new article's page to fill in
// what the feed entry lacks.
func WithPageScraper(s *PageScraper) Option {
	return func(f *Fetcher) { f.pages = s }
}

// NewFetcher creates a fetcher. Sources are fetched one at a time unless the
// store supports concurrent writes.
func NewFetcher(db database.Store, logger *slog.Logger, opts ...Option) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	workers := 1
	if db.SupportsHighConcurrency() {
		workers = workersPostgres
	}
	f := &Fetcher{
		db:      db,
		parser:  gofeed.NewParser(),
		workers: workers,
		hosts:   newHostLimiter(hostInterval),
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchSource fetches one source and stores entries not seen before.
// Returns the number of new articles.
func (f *Fetcher) FetchSource(ctx context.Context, src model.Source) (int, error) {
	if err := f.hosts.wait(ctx, hostOf(src.URL)); err != nil {
		return 0, fmt.Errorf("wait for %s: %w", src.URL, err)
	}

	parsed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		if uerr := f.db.UpdateSourceError(src.ID, truncateRunes(err.Error(), maxErrorLen)); uerr != nil {
			f.logger.Error("update source error", "source_id", src.ID, "error", uerr)
		}
		metrics.IngestErrors.WithLabelValues(sourceLabel(src)).Inc()
		return 0, fmt.Errorf("parse feed %s: %w", src.URL, err)
	}

	// Adopt the feed's own title when the source was registered by URL only.
	if parsed.Title != "" && src.Title == src.URL {
		if err := f.db.UpdateSourceTitle(src.ID, parsed.Title); err != nil {
			f.logger.Warn("update source title", "source_id", src.ID, "error", err)
		}
	}

	now := f.now()
	newCount := 0
	for _, item := range parsed.Items {
		a, ok := toArticle(src, item, now)
		if !ok {
			continue
		}
		if f.pages != nil {
			f.enrich(ctx, a, item.PublishedParsed != nil || item.UpdatedParsed != nil)
		}
		_, isNew, err := f.db.AddArticle(a)
		if err != nil {
			f.logger.Error("add article", "url", a.URL, "error", err)
			continue
		}
		if isNew {
			newCount++
		}
	}
	metrics.IngestedTotal.WithLabelValues(sourceLabel(src)).Add(float64(newCount))

	if err := f.db.UpdateSourceLastFetched(src.ID, now); err != nil {
		f.logger.Error("update last_fetched", "source_id", src.ID, "error", err)
	}
	return newCount, nil
}

// enrich scrapes the page of an article not stored yet and fills in fields
// from it. Failures leave the feed's values in place.
func (f *Fetcher) enrich(ctx context.Context, a *model.StoredArticle, datedByFeed bool) {
	exists, err := f.db.ArticleExists(a.URL)
	if err != nil {
		f.logger.Error("check article", "url", a.URL, "error", err)
		return
	}
	if exists {
		return
	}
	if err := f.hosts.wait(ctx, hostOf(a.URL)); err != nil {
		return
	}
	page, err := f.pages.Scrape(ctx, a.URL)
	if err != nil {
		f.logger.Warn("scrape article", "url", a.URL, "error", err)
		return
	}
	applyPage(a, page, datedByFeed)
}

// applyPage merges scraped fields into a. The page's location and a longer
// page body always win; headline, author and date only fill gaps.
func applyPage(a *model.StoredArticle, p *Page, datedByFeed bool) {
	if a.Headline == "" {
		a.Headline = p.Headline
	}
	if a.Author == "" {
		a.Author = p.Author
	}
	if p.Location != "" {
		a.Location = p.Location
	}
	if utf8.RuneCountInString(p.Content) > utf8.RuneCountInString(a.Content) {
		a.Content = p.Content
		a.WordCount = len(strings.Fields(p.Content))
	}
	if !datedByFeed && !p.Published.IsZero() {
		a.Published = p.Published
	}
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func sourceLabel(src model.Source) string {
	return strconv.FormatInt(src.ID, 10)
}

// toArticle maps a feed entry to a stored article. Entries without a link
// are skipped since the link is the article's identity.
func toArticle(src model.Source, item *gofeed.Item, now time.Time) (*model.StoredArticle, bool) {
	link := strings.TrimSpace(item.Link)
	if link == "" {
		return nil, false
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}
	content := PlainText(body)

	published := now
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	a := &model.StoredArticle{
		Article: model.Article{
			Headline:  strings.TrimSpace(item.Title),
			URL:       link,
			Author:    authorName(item),
			Location:  src.Location,
			Content:   content,
			WordCount: len(strings.Fields(content)),
		},
		SourceID:    src.ID,
		Published:   published,
		FetchedTime: now,
	}
	return a, true
}

func authorName(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, p := range item.Authors {
		if p != nil && p.Name != "" {
			return p.Name
		}
	}
	return ""
}

// PlainText strips markup from an HTML fragment and collapses whitespace.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// FetchAll fetches every source and returns new article counts by source ID.
// A failing source is logged and left out of the result.
func (f *Fetcher) FetchAll(ctx context.Context) (map[int64]int, error) {
	sources, err := f.db.GetSources()
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	results := make(map[int64]int, len(sources))
	if len(sources) == 0 {
		return results, nil
	}

	f.logger.Info("Fetching sources", "count", len(sources), "workers", f.workers)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(f.workers)
	for i, src := range sources {
		if ctx.Err() != nil {
			f.logger.Warn("FetchAll cancelled", "started", i, "total", len(sources))
			break
		}
		g.Go(func() error {
			count, err := f.FetchSource(ctx, src)
			if err != nil {
				f.logger.Error("fetch source", "source_id", src.ID, "url", src.URL, "error", err)
				return nil
			}
			mu.Lock()
			results[src.ID] = count
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results, ctx.Err()
}
