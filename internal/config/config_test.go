package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnvVars = []string{
	"NEWSFRONT_ADDR", "NEWSFRONT_NEWS_API_URL", "NEWSFRONT_FETCH_TIMEOUT",
	"NEWSFRONT_LOAD_WAIT", "NEWSFRONT_VIEW_TTL", "NEWSFRONT_MAX_VIEWS",
	"NEWSAPI_ADDR", "NEWSAPI_DATABASE_URL", "NEWSAPI_SQLITE_PATH", "NEWSAPI_PAGE_SIZE",
	"NEWSAPI_RATE_LIMIT_RPS", "NEWSAPI_RATE_LIMIT_BURST", "NEWSAPI_POLL_INTERVAL",
	"NEWSAPI_TRUST_PROXY", "NEWSAPI_SCRAPE_PAGES", "NEWSAPI_SCRAPE_TIMEOUT",
	"NEWSAPI_SELECTOR_HEADLINE", "NEWSAPI_SELECTOR_AUTHOR", "NEWSAPI_SELECTOR_LOCATION",
	"NEWSAPI_SELECTOR_PUBLISHED", "NEWSAPI_SELECTOR_CONTENT",
	"LOG_LEVEL", "LOG_FORMAT",
}

func clearTestEnv(t *testing.T) {
	t.Helper()
	for _, k := range testEnvVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearTestEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, FrontendConfig{
		Addr:         ":3000",
		NewsAPIURL:   "http://127.0.0.1:8000/api/news/",
		FetchTimeout: 0,
		LoadWait:     2 * time.Second,
		ViewTTL:      5 * time.Minute,
		MaxViews:     1024,
	}, cfg.Frontend)
	assert.Equal(t, APIConfig{
		Addr:           ":8000",
		SQLitePath:     "newsfront.db",
		PageSize:       20,
		RateLimitRPS:   5,
		RateLimitBurst: 10,
		PollInterval:   15 * time.Minute,
	}, cfg.API)
	assert.False(t, cfg.Scrape.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Scrape.Timeout)
	assert.Contains(t, cfg.Scrape.Content, "div.story-content p")
	assert.Equal(t, LoggingConfig{Level: "info", Format: "json"}, cfg.Logging)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearTestEnv(t)
	t.Setenv("NEWSFRONT_NEWS_API_URL", "https://news.example.com/api/news/")
	t.Setenv("NEWSFRONT_FETCH_TIMEOUT", "3s")
	t.Setenv("NEWSAPI_PAGE_SIZE", "5")
	t.Setenv("NEWSAPI_RATE_LIMIT_RPS", "0.5")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("NEWSAPI_TRUST_PROXY", "true")
	t.Setenv("NEWSAPI_SCRAPE_PAGES", "1")
	t.Setenv("NEWSAPI_SELECTOR_CONTENT", "main p")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://news.example.com/api/news/", cfg.Frontend.NewsAPIURL)
	assert.Equal(t, 3*time.Second, cfg.Frontend.FetchTimeout)
	assert.Equal(t, 5, cfg.API.PageSize)
	assert.Equal(t, 0.5, cfg.API.RateLimitRPS)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.True(t, cfg.API.TrustProxy)
	assert.True(t, cfg.Scrape.Enabled)
	assert.Equal(t, "main p", cfg.Scrape.Content)
}

func TestFromEnv_PollIntervalFloor(t *testing.T) {
	clearTestEnv(t)
	t.Setenv("NEWSAPI_POLL_INTERVAL", "1m")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, MinPollInterval, cfg.API.PollInterval)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"NEWSFRONT_NEWS_API_URL":  "not a url",
		"NEWSFRONT_FETCH_TIMEOUT": "soon",
		"NEWSFRONT_MAX_VIEWS":     "many",
		"NEWSAPI_PAGE_SIZE":       "0",
		"NEWSAPI_RATE_LIMIT_RPS":  "-1",
		"LOG_FORMAT":              "xml",
		"NEWSAPI_TRUST_PROXY":     "maybe",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearTestEnv(t)
			t.Setenv(key, value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearTestEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NEWSFRONT_ADDR=:4000\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("NEWSFRONT_ADDR") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.Frontend.Addr)
}

func TestLoad_NoDotEnvIsFine(t *testing.T) {
	clearTestEnv(t)
	t.Chdir(t.TempDir())

	_, err := Load()
	assert.NoError(t, err)
}

func TestLoad_MissingNamedFileFails(t *testing.T) {
	clearTestEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
