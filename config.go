package ttlog

import (
	"errors"
	"os"
	"time"

	"github.com/gentleeduck/duck-ttlog/event"
	"github.com/gentleeduck/duck-ttlog/snapshot"
)

// Config controls a Handle. ServiceName is required. NewConfig returns every
// other option at its default; normalize fills zero-valued Capacity,
// ChannelCapacity, StoragePath, PeriodicInterval, ListenerBufferCapacity and
// Compression, and leaves MinLevel and the two hook flags as given.
type Config struct {
	// Capacity is the ring buffer slot count.
	Capacity int
	// ChannelCapacity is the control channel depth.
	ChannelCapacity int
	// ServiceName is embedded in every snapshot record and filename.
	ServiceName string
	// StoragePath is the snapshot directory. Defaults to the platform
	// temp directory.
	StoragePath string
	// PeriodicInterval is the writer tick period. Defaults to 60s.
	PeriodicInterval time.Duration
	// MinLevel is the initial level filter; changeable at runtime.
	MinLevel event.Level
	// InstallPanicHook arms CapturePanic. Default true.
	InstallPanicHook bool
	// InstallSignalHooks registers the fatal-signal notifier. Default true.
	InstallSignalHooks bool
	// ListenerBufferCapacity bounds the listener fan-out queue.
	ListenerBufferCapacity int
	// Compression selects the snapshot codec. Defaults to LZ4 block mode.
	Compression snapshot.Compression
}

const (
	defaultCapacity         = 1024
	defaultChannelCapacity  = 100
	defaultPeriodicInterval = 60 * time.Second
	defaultListenerBuffer   = 1024
)

var errNoService = errors.New("ttlog: config requires a service name")

// NewConfig returns a Config with defaults for the given service.
func NewConfig(service string) Config {
	return Config{
		Capacity:               defaultCapacity,
		ChannelCapacity:        defaultChannelCapacity,
		ServiceName:            service,
		StoragePath:            os.TempDir(),
		PeriodicInterval:       defaultPeriodicInterval,
		MinLevel:               event.LevelInfo,
		InstallPanicHook:       true,
		InstallSignalHooks:     true,
		ListenerBufferCapacity: defaultListenerBuffer,
		Compression:            snapshot.CompressionLZ4,
	}
}

func (c *Config) normalize() error {
	if c.ServiceName == "" {
		return errNoService
	}
	if c.Capacity < 1 {
		c.Capacity = defaultCapacity
	}
	if c.ChannelCapacity < 1 {
		c.ChannelCapacity = defaultChannelCapacity
	}
	if c.StoragePath == "" {
		c.StoragePath = os.TempDir()
	}
	if c.PeriodicInterval <= 0 {
		c.PeriodicInterval = defaultPeriodicInterval
	}
	if c.ListenerBufferCapacity < 1 {
		c.ListenerBufferCapacity = defaultListenerBuffer
	}
	if c.Compression == "" {
		c.Compression = snapshot.CompressionLZ4
	}
	return nil
}
