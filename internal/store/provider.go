package store

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/jensholdgaard/player-auction/internal/config"
)

// Repositories groups all repository implementations returned by a store driver.
type Repositories struct {
	Players PlayerRepository
	Teams   TeamRepository
	// Closer is called to release underlying resources (e.g. DB connection).
	Closer io.Closer
	// Ping checks the underlying connection health.
	Ping func(ctx context.Context) error
}

// Driver is a function that opens a roster source and returns Repositories.
type Driver func(ctx context.Context, cfg config.DatabaseConfig) (*Repositories, error)

// registry maps driver names to their factory functions.
var registry = map[string]Driver{}

// Register adds a named driver to the global registry.
// It is intended to be called from init() in each driver package.
func Register(name string, d Driver) {
	registry[name] = d
}

// Open selects the driver specified in cfg.Driver and returns Repositories.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Repositories, error) {
	d, ok := registry[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unknown store driver %q (registered: %v)", cfg.Driver, registeredNames())
	}
	return d(ctx, cfg)
}

func registeredNames() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// NopCloser is an io.Closer for drivers that hold no resources.
type NopCloser struct{}

// Close does nothing.
func (NopCloser) Close() error { return nil }
