// Package database provides storage backends for the companion news API.
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bryan-buckman/newsfront/internal/model"
)

// Store defines the interface for database operations.
// Both SQLite and PostgreSQL implementations satisfy this interface.
type Store interface {
	Close() error

	// DatabaseType returns the name of the database backend ("SQLite" or "PostgreSQL").
	DatabaseType() string

	// SupportsHighConcurrency returns true if the database can handle
	// many concurrent write operations (e.g., PostgreSQL).
	// SQLite returns false due to write locking limitations.
	SupportsHighConcurrency() bool

	// Source operations
	GetSources() ([]model.Source, error)
	GetSourceByID(sourceID int64) (*model.Source, error)
	GetOrCreateSource(title, url, category, location string) (int64, bool, error)
	UpdateSourceLastFetched(sourceID int64, t time.Time) error
	UpdateSourceTitle(sourceID int64, title string) error
	UpdateSourceError(sourceID int64, errMsg string) error
	DeleteSource(sourceID int64) error

	// Article operations
	AddArticle(a *model.StoredArticle) (int64, bool, error)
	ArticleExists(url string) (bool, error)
	LatestArticles(limit int) ([]model.Article, error)
	SearchArticles(f model.ArticleFilter) ([]model.Article, int64, error)
	ArticleStats(top int) (*model.Stats, error)
	CountArticles() (int64, error)
	DeleteArticlesBefore(t time.Time) (int64, error)

	// Settings operations
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	GetPollingInterval() (int, error)
}

// Open picks PostgreSQL when databaseURL is set and SQLite at sqlitePath otherwise.
func Open(databaseURL, sqlitePath string) (Store, error) {
	if databaseURL != "" {
		return NewPostgres(databaseURL)
	}
	return New(sqlitePath)
}

// MinPollingIntervalMinutes is the floor applied to the stored polling interval.
const MinPollingIntervalMinutes = 15

func scanSources(rows *sql.Rows) ([]model.Source, error) {
	var sources []model.Source
	for rows.Next() {
		var s model.Source
		var lastFetched sql.NullTime
		if err := rows.Scan(&s.ID, &s.Title, &s.URL, &s.Category, &s.Location, &lastFetched, &s.LastError); err != nil {
			return nil, err
		}
		if lastFetched.Valid {
			s.LastFetched = lastFetched.Time
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// scanArticles reads headline, url, author, location, content, published_at,
// scraped_at, word_count rows into display-ready articles.
func scanArticles(rows *sql.Rows) ([]model.Article, error) {
	articles := []model.Article{}
	for rows.Next() {
		var a model.Article
		var publishedAt, scrapedAt sql.NullTime
		if err := rows.Scan(&a.Headline, &a.URL, &a.Author, &a.Location, &a.Content, &publishedAt, &scrapedAt, &a.WordCount); err != nil {
			return nil, err
		}
		if publishedAt.Valid {
			a.PublishedAt = publishedAt.Time.Format(model.PublishedLayout)
		}
		if scrapedAt.Valid {
			a.ScrapedAt = scrapedAt.Time.UTC().Format(time.RFC3339)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func parsePollingInterval(val string, err error) int {
	if err != nil {
		return MinPollingIntervalMinutes
	}
	var mins int
	if _, err := fmt.Sscanf(val, "%d", &mins); err != nil || mins < MinPollingIntervalMinutes {
		return MinPollingIntervalMinutes
	}
	return mins
}
