// Package config loads newsfront settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

// Config holds settings for both the frontend and the companion news API.
type Config struct {
	Frontend FrontendConfig
	API      APIConfig
	Scrape   ScrapeConfig
	Logging  LoggingConfig
}

// FrontendConfig configures `newsfront serve`.
type FrontendConfig struct {
	Addr         string        `env:"NEWSFRONT_ADDR" default:":3000"`
	NewsAPIURL   string        `env:"NEWSFRONT_NEWS_API_URL" default:"http://127.0.0.1:8000/api/news/"`
	FetchTimeout time.Duration `env:"NEWSFRONT_FETCH_TIMEOUT" default:"0s"` // 0 = no timeout
	LoadWait     time.Duration `env:"NEWSFRONT_LOAD_WAIT" default:"2s"`
	ViewTTL      time.Duration `env:"NEWSFRONT_VIEW_TTL" default:"5m"`
	MaxViews     int           `env:"NEWSFRONT_MAX_VIEWS" default:"1024"`
}

// APIConfig configures `newsfront api` and ingestion.
type APIConfig struct {
	Addr           string        `env:"NEWSAPI_ADDR" default:":8000"`
	DatabaseURL    string        `env:"NEWSAPI_DATABASE_URL"` // postgres DSN; empty selects SQLite
	SQLitePath     string        `env:"NEWSAPI_SQLITE_PATH" default:"newsfront.db"`
	PageSize       int           `env:"NEWSAPI_PAGE_SIZE" default:"20"`
	RateLimitRPS   float64       `env:"NEWSAPI_RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst int           `env:"NEWSAPI_RATE_LIMIT_BURST" default:"10"`
	PollInterval   time.Duration `env:"NEWSAPI_POLL_INTERVAL" default:"15m"`
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that sets those headers.
	TrustProxy bool `env:"NEWSAPI_TRUST_PROXY" default:"false"`
}

// ScrapeConfig configures fetching each new article's page during ingestion.
// Selectors are CSS selector groups; the first match in document order wins.
type ScrapeConfig struct {
	Enabled   bool          `env:"NEWSAPI_SCRAPE_PAGES" default:"false"`
	Timeout   time.Duration `env:"NEWSAPI_SCRAPE_TIMEOUT" default:"10s"`
	Headline  string        `env:"NEWSAPI_SELECTOR_HEADLINE" default:"h1.IiRps, article h1, h1"`
	Author    string        `env:"NEWSAPI_SELECTOR_AUTHOR" default:"span.contributor-name, [rel=author], .author"`
	Location  string        `env:"NEWSAPI_SELECTOR_LOCATION" default:"span.author-location"`
	Published string        `env:"NEWSAPI_SELECTOR_PUBLISHED" default:"div.time-social-share-wrapper span:first-child, time[datetime]"`
	Content   string        `env:"NEWSAPI_SELECTOR_CONTENT" default:"div.story-content p, article p"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"json"`
}

// MinPollInterval is the lower bound for APIConfig.PollInterval.
const MinPollInterval = 15 * time.Minute

// Load reads env files, then the environment, then validates. Without
// arguments ./.env is read if present; named files must exist.
// Variables already set in the environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	err := godotenv.Load(envFiles...)
	if err != nil && (len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist)) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables and defaults only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := loadFromEnvironment(cfg); err != nil {
		return nil, err
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
