// Package source loads location sensor data onto a one minute grid.
package source

import (
	"context"
	"time"

	"github.com/kilianp07/opsreport/core/factory"
)

// Point is a single sample of a tag.
type Point struct {
	Time  time.Time
	Value float64
}

// Source returns the raw samples of the requested tags within [start, end],
// keyed by tag and sorted by time. Tags without data may be absent.
type Source interface {
	Fetch(ctx context.Context, tags []string, start, end time.Time) (map[string][]Point, error)
}

// Closer is implemented by sources holding connections.
type Closer interface {
	Close()
}

var registry = factory.NewRegistry[Source]()

// Register adds a source factory under name.
func Register(name string, f factory.Factory[Source]) error {
	return registry.Register(name, f)
}

// New creates the configured Source.
func New(cfg factory.ModuleConfig) (Source, error) {
	return registry.Create(cfg)
}

// Types lists the registered source types.
func Types() []string { return registry.Types() }
