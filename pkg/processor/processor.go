// Package processor defines the capability contract for result-table
// processors and the explicit registry the pipeline consults. Processors
// are compiled in and registered by the host; there is no discovery.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bioremcore/pkg/table"
)

// Processor transforms an enriched result table, returning the replacement.
type Processor interface {
	Name() string
	Process(ctx context.Context, tab *table.Table) (*table.Table, error)
}

// ErrNilProcessor rejects nil registrations.
var ErrNilProcessor = errors.New("processor: nil processor")

// Registry holds processors in registration order.
type Registry struct {
	mu    sync.RWMutex
	names map[string]struct{}
	procs []Processor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register appends p. Nil processors, empty names and duplicate names are
// rejected.
func (r *Registry) Register(p Processor) error {
	if p == nil {
		return ErrNilProcessor
	}
	name := p.Name()
	if name == "" {
		return errors.New("processor: empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[name]; exists {
		return fmt.Errorf("processor: %q already registered", name)
	}
	r.names[name] = struct{}{}
	r.procs = append(r.procs, p)
	return nil
}

// Processors returns the registered processors in registration order.
func (r *Registry) Processors() []Processor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Processor, len(r.procs))
	copy(out, r.procs)
	return out
}
