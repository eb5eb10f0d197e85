package ttlog

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gentleeduck/duck-ttlog/event"
	"github.com/gentleeduck/duck-ttlog/snapshot"
)

type fileConfig struct {
	Service                string `yaml:"service"`
	Capacity               int    `yaml:"capacity"`
	ChannelCapacity        int    `yaml:"channel_capacity"`
	StoragePath            string `yaml:"storage_path"`
	PeriodicIntervalSecs   int    `yaml:"periodic_interval_secs"`
	MinLevel               string `yaml:"min_level"`
	Compression            string `yaml:"compression"`
	ListenerBufferCapacity int    `yaml:"listener_buffer_capacity"`
	InstallPanicHook       *bool  `yaml:"install_panic_hook"`
	InstallSignalHooks     *bool  `yaml:"install_signal_hooks"`
}

// LoadFile reads a YAML config file and returns it overlaid on the defaults.
// Environment variables still take precedence when Init applies FromEnv.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("ttlog: read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("ttlog: parse config: %w", err)
	}

	cfg := NewConfig(fc.Service)
	if fc.Capacity > 0 {
		cfg.Capacity = fc.Capacity
	}
	if fc.ChannelCapacity > 0 {
		cfg.ChannelCapacity = fc.ChannelCapacity
	}
	if fc.StoragePath != "" {
		cfg.StoragePath = fc.StoragePath
	}
	if fc.PeriodicIntervalSecs > 0 {
		cfg.PeriodicInterval = time.Duration(fc.PeriodicIntervalSecs) * time.Second
	}
	if fc.MinLevel != "" {
		if lvl, ok := parseLevelStrict(fc.MinLevel); ok {
			cfg.MinLevel = lvl
		}
	}
	if fc.Compression != "" {
		cfg.Compression = snapshot.Compression(fc.Compression)
	}
	if fc.ListenerBufferCapacity > 0 {
		cfg.ListenerBufferCapacity = fc.ListenerBufferCapacity
	}
	if fc.InstallPanicHook != nil {
		cfg.InstallPanicHook = *fc.InstallPanicHook
	}
	if fc.InstallSignalHooks != nil {
		cfg.InstallSignalHooks = *fc.InstallSignalHooks
	}
	return cfg, nil
}

// parseLevelStrict accepts only known level names, unlike event.ParseLevel
// which falls back to info.
func parseLevelStrict(s string) (event.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return event.ParseLevel(s), true
	default:
		return 0, false
	}
}
