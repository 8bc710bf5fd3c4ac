package config

import "fmt"

// StoreConfig selects where accepted tariff profiles are kept.
type StoreConfig struct {
	// Backend is "memory", "sqlite" or "jsonl".
	Backend string `json:"backend"`
	// Path is the SQLite database or the JSONL file.
	Path string `json:"path"`
	// Rotation of the JSONL file, in megabytes and days.
	MaxSizeMB  int `json:"max_size_mb"`
	MaxBackups int `json:"max_backups"`
	MaxAgeDays int `json:"max_age_days"`
}

func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "kinjo.db"
		case "jsonl":
			c.Path = "profiles.jsonl"
		}
	}
	if c.Backend == "jsonl" && c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
}

func (c StoreConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "sqlite", "jsonl":
		if c.Path == "" {
			return fmt.Errorf("path is required")
		}
		return nil
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
}
