package config

import (
	"fmt"
	"net/url"
	"strings"
)

func validateConfig(config *Config) error {
	if err := validateFrontendConfig(&config.Frontend); err != nil {
		return fmt.Errorf("frontend config validation failed: %w", err)
	}
	if err := validateAPIConfig(&config.API); err != nil {
		return fmt.Errorf("api config validation failed: %w", err)
	}
	if err := validateScrapeConfig(&config.Scrape); err != nil {
		return fmt.Errorf("scrape config validation failed: %w", err)
	}
	if err := validateLoggingConfig(&config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}
	return nil
}

func validateFrontendConfig(config *FrontendConfig) error {
	u, err := url.Parse(config.NewsAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("news API URL must be an absolute http(s) URL, got %q", config.NewsAPIURL)
	}
	if config.FetchTimeout < 0 || config.LoadWait < 0 || config.ViewTTL < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if config.MaxViews < 0 {
		return fmt.Errorf("max views must not be negative, got %d", config.MaxViews)
	}
	return nil
}

func validateAPIConfig(config *APIConfig) error {
	if config.PageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", config.PageSize)
	}
	if config.RateLimitRPS <= 0 || config.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit must be positive, got rps=%v burst=%d", config.RateLimitRPS, config.RateLimitBurst)
	}
	if config.PollInterval < MinPollInterval {
		config.PollInterval = MinPollInterval
	}
	return nil
}

func validateScrapeConfig(config *ScrapeConfig) error {
	if config.Timeout < 0 {
		return fmt.Errorf("scrape timeout must not be negative")
	}
	if config.Enabled && strings.TrimSpace(config.Content) == "" {
		return fmt.Errorf("content selector is required when page scraping is enabled")
	}
	return nil
}

func validateLoggingConfig(config *LoggingConfig) error {
	switch strings.ToLower(config.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log format must be json or text, got %q", config.Format)
	}
	return nil
}
