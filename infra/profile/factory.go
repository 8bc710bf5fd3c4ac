// Package profile holds the persistent implementations of core/profile.Store.
package profile

import (
	"fmt"

	"github.com/kinjo-energy/kinjo/config"
	core "github.com/kinjo-energy/kinjo/core/profile"
)

// NewStore builds the store selected by cfg.
func NewStore(cfg config.StoreConfig) (core.Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return core.NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "jsonl":
		return NewJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	default:
		return nil, fmt.Errorf("unknown store backend %s", cfg.Backend)
	}
}
