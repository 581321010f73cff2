// Package config loads application configuration from a config file,
// environment variables and a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// Sources is the source registry file or directory of JSON files.
	Sources string `mapstructure:"sources"`

	// BlogDir receives the rendered daily digest markdown.
	BlogDir string `mapstructure:"blog_dir"`

	// MetricsPath receives the per-feed metrics snapshot.
	MetricsPath string `mapstructure:"metrics_path"`

	// DraftDir holds the per-day article cache.
	DraftDir string `mapstructure:"draft_dir"`

	// GitHubCacheDir holds the ETag cache used by the GitHub client.
	GitHubCacheDir string `mapstructure:"github_cache_dir"`

	// FocusFile and NoFocusFile list boost/penalty keywords, one per line.
	FocusFile   string `mapstructure:"focus_file"`
	NoFocusFile string `mapstructure:"nofocus_file"`

	// CacheEnabled bypasses fetching when a same-day article cache exists.
	CacheEnabled bool `mapstructure:"cache_enabled"`

	// MaxArticles overrides the registry's daily_target when > 0.
	MaxArticles int `mapstructure:"max_articles"`

	// SummaryLanguage hints the evaluation prompt (default Korean).
	SummaryLanguage string `mapstructure:"summary_language"`
}

var cfg *Config

// Load reads configuration from the optional config file path plus
// environment variables, applying defaults for anything unset.
func Load(cfgFile string) (*Config, error) {
	// A missing .env file is fine; environment takes precedence anyway.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("sources", "workflow/resources")
	v.SetDefault("blog_dir", "src/content/blog")
	v.SetDefault("metrics_path", "src/data/metrics.json")
	v.SetDefault("draft_dir", "workflow/draft")
	v.SetDefault("github_cache_dir", "workflow/.github_cache")
	v.SetDefault("focus_file", "workflow/myfocus.md")
	v.SetDefault("nofocus_file", "workflow/mynofocus.md")
	v.SetDefault("summary_language", "Korean")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loaded.CacheEnabled = loaded.CacheEnabled || os.Getenv("RSS_CACHE_ENABLE") == "true"
	if raw := os.Getenv("MAX_ARTICLE_NUMS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_ARTICLE_NUMS %q: %w", raw, err)
		}
		loaded.MaxArticles = n
	}
	if lang := os.Getenv("SUMMARY_LANGUAGE"); lang != "" {
		loaded.SummaryLanguage = lang
	}

	cfg = loaded
	return loaded, nil
}

// Get returns the last loaded configuration, loading defaults if needed.
func Get() *Config {
	if cfg == nil {
		loaded, err := Load("")
		if err != nil {
			// Defaults cannot fail to load; a broken environment can.
			panic(err)
		}
		return loaded
	}
	return cfg
}
