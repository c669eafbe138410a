package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/peertrack/logger"
)

// componentEntry holds a component and its started state.
type componentEntry struct {
	component Component
	started   bool
}

// Registry manages component lifecycle with deterministic ordering.
// Components are started in registration order and stopped in reverse order.
type Registry struct {
	entries []*componentEntry
	lookup  map[string]*componentEntry
	log     *logger.Logger
	mu      sync.RWMutex
}

// NewRegistry creates a new component registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		entries: make([]*componentEntry, 0),
		lookup:  make(map[string]*componentEntry),
		log:     log.WithComponent("registry"),
	}
}

// Register adds a component to the registry. Components are started in
// the order they are registered, so register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	entry := &componentEntry{component: c}
	r.entries = append(r.entries, entry)
	r.lookup[name] = entry
	return nil
}

// StartAll starts all components in registration order. If any component
// fails to start, components already started are stopped in reverse order.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, entry := range r.entries {
		name := entry.component.Name()
		if err := entry.component.Start(ctx); err != nil {
			r.log.Error("component start failed", map[string]interface{}{
				"component": name, "error": err.Error(),
			})
			r.stopEntries(ctx, i-1)
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		entry.started = true

		if d, ok := entry.component.(Describable); ok {
			desc := d.Describe()
			if desc.Name == "" {
				desc.Name = name
			}
			r.log.Info("component started", map[string]interface{}{
				"component": desc.Name, "type": desc.Type, "details": desc.Details,
			})
		} else {
			r.log.Info("component started", map[string]interface{}{"component": name})
		}
	}
	return nil
}

// StopAll stops all started components in reverse registration order.
// Stop errors are logged but do not halt the shutdown of the remaining
// components.
func (r *Registry) StopAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopEntries(ctx, len(r.entries)-1)
}

func (r *Registry) stopEntries(ctx context.Context, from int) {
	for i := from; i >= 0; i-- {
		entry := r.entries[i]
		if !entry.started {
			continue
		}
		name := entry.component.Name()
		if err := entry.component.Stop(ctx); err != nil {
			r.log.Warn("component stop failed", map[string]interface{}{
				"component": name, "error": err.Error(),
			})
		}
		entry.started = false
	}
}

// Health returns the health of every registered component.
func (r *Registry) Health(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry.component.Health(ctx))
	}
	return out
}

// Get returns the registered component with the given name.
func (r *Registry) Get(name string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.lookup[name]
	if !ok {
		return nil, false
	}
	return entry.component, true
}
