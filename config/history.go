package config

import (
	"fmt"
)

// HistoryConfig defines where daily production totals are stored.
type HistoryConfig struct {
	// Backend selects the store type: "sqlite", "jsonl" or "memory".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation of the jsonl file when it exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *HistoryConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "sqlite"
	}
	if c.Path == "" && c.Backend != "memory" {
		c.Path = "production_history.db"
		if c.Backend == "jsonl" {
			c.Path = "production_history.jsonl"
		}
	}
}

// Validate checks mandatory fields.
func (c HistoryConfig) Validate() error {
	switch c.Backend {
	case "sqlite", "jsonl":
		if c.Path == "" {
			return fmt.Errorf("history path is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown history backend %s", c.Backend)
	}
	return nil
}
