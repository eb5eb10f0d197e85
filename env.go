package ttlog

import (
	"os"
	"strconv"
	"time"
)

// FromEnv overlays TTLOG_* environment variables onto cfg. Unset variables
// and unparseable values leave the config untouched.
func FromEnv(cfg *Config) {
	if v := os.Getenv("TTLOG_SNAPSHOT_DIR"); v != "" {
		cfg.StoragePath = v
	}
	if v := os.Getenv("TTLOG_FLUSH_INTERVAL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PeriodicInterval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("TTLOG_LEVEL"); v != "" {
		if lvl, ok := parseLevelStrict(v); ok {
			cfg.MinLevel = lvl
		}
	}
}
