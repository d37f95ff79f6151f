// Package config provides configuration loading for recall.
package config

import (
	"fmt"
	"path/filepath"
)

// Config is the full recall configuration.
type Config struct {
	Store      StoreConfig      `koanf:"store"`
	Similarity SimilarityConfig `koanf:"similarity"`
	Find       FindConfig       `koanf:"find"`
	Review     ReviewConfig     `koanf:"review"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// StoreConfig locates the store within a project.
type StoreConfig struct {
	// Dir is the store directory relative to the project root.
	Dir string `koanf:"dir"`

	// Categories overrides the recognized category list.
	Categories []string `koanf:"categories"`
}

// SimilarityConfig tunes deduplication.
type SimilarityConfig struct {
	// Threshold is the minimum score for a match to count as a
	// near-duplicate.
	Threshold float64 `koanf:"threshold"`

	// MatchLimit is how many top matches the add workflow considers.
	MatchLimit int `koanf:"match_limit"`
}

// FindConfig tunes the find operation.
type FindConfig struct {
	Limit int `koanf:"limit"`
}

// ReviewConfig tunes the review operation.
type ReviewConfig struct {
	StaleDays int `koanf:"stale_days"`
	Limit     int `koanf:"limit"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "console" or "json".
	Format string `koanf:"format"`
}

// StorePath resolves the store directory under a project root.
func (c *Config) StorePath(root string) string {
	return filepath.Join(root, filepath.FromSlash(c.Store.Dir))
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.Similarity.Threshold < 0 || c.Similarity.Threshold > 1 {
		return fmt.Errorf("similarity.threshold must be in [0, 1], got %v", c.Similarity.Threshold)
	}
	if c.Similarity.MatchLimit <= 0 {
		return fmt.Errorf("similarity.match_limit must be positive, got %d", c.Similarity.MatchLimit)
	}
	if c.Find.Limit <= 0 {
		return fmt.Errorf("find.limit must be positive, got %d", c.Find.Limit)
	}
	if c.Review.StaleDays <= 0 {
		return fmt.Errorf("review.stale_days must be positive, got %d", c.Review.StaleDays)
	}
	if c.Review.Limit <= 0 {
		return fmt.Errorf("review.limit must be positive, got %d", c.Review.Limit)
	}
	if c.Store.Dir == "" {
		return fmt.Errorf("store.dir cannot be empty")
	}
	if filepath.IsAbs(c.Store.Dir) {
		return fmt.Errorf("store.dir must be relative to the project root, got %s", c.Store.Dir)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
