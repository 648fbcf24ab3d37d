// Package model defines shared data structures.
package model

import "time"

// Article is one news item as served by the news API.
// Frontend code treats it as read-only.
type Article struct {
	Headline    string `json:"headline"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Location    string `json:"location"`
	PublishedAt string `json:"published_at"` // already display-formatted
	Content     string `json:"content"`
	ScrapedAt   string `json:"scraped_at,omitempty"`
	WordCount   int    `json:"word_count,omitempty"`
}

// Source is an RSS/Atom feed the companion API ingests articles from.
type Source struct {
	ID          int64
	Title       string
	URL         string
	Category    string // e.g. "politics"
	Location    string // byline location used when the feed has none
	LastFetched time.Time
	LastError   string
}

// StoredArticle is an Article plus the bookkeeping the store keeps for it.
type StoredArticle struct {
	Article
	ID          int64
	SourceID    int64
	Published   time.Time // sort key for the API
	FetchedTime time.Time
}

// PublishedLayout is the display format for Article.PublishedAt.
const PublishedLayout = "2006-01-02 15:04"

// Settings key constants.
const (
	SettingPollingInterval = "polling_interval_minutes"
)

// ArticleFilter narrows a search over stored articles. Zero fields match
// everything.
type ArticleFilter struct {
	Query    string // substring of headline or content
	Author   string // substring of author
	Location string // exact location
	From     time.Time
	To       time.Time // exclusive
	MinWords int
	MaxWords int
	Limit    int
	Offset   int
}

// AuthorCount is an author and how many stored articles they wrote.
type AuthorCount struct {
	Author string `json:"author"`
	Count  int64  `json:"count"`
}

// LocationCount is a location and how many stored articles carry it.
type LocationCount struct {
	Location string `json:"location"`
	Count    int64  `json:"count"`
}

// WordCountStats summarises article lengths.
type WordCountStats struct {
	Average float64 `json:"average"`
	Min     int64   `json:"min"`
	Max     int64   `json:"max"`
	Total   int64   `json:"total"`
}

// Stats describes the stored article collection.
type Stats struct {
	TotalArticles int64           `json:"total_articles"`
	TopAuthors    []AuthorCount   `json:"top_authors"`
	TopLocations  []LocationCount `json:"top_locations"`
	WordCount     WordCountStats  `json:"word_count_stats"`
	ActiveDays    int64           `json:"active_days"` // distinct publish dates (UTC)
}
