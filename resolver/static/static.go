// Package static provides a Resolver backed by a fixed in-memory member
// list. Useful for local development and testing.
package static

import (
	"context"
	"sync"

	"github.com/kbukum/peertrack/resolver"
)

// Resolver implements resolver.Resolver over an in-memory address list.
// The list can be swapped at runtime with SetAddresses, which makes the
// type convenient for simulating membership changes in tests.
type Resolver struct {
	service string

	mu    sync.RWMutex
	addrs []string
	port  int
	err   error
}

// New creates a static Resolver for the given service.
func New(service string, port int, addrs ...string) *Resolver {
	return &Resolver{
		service: service,
		port:    port,
		addrs:   append([]string(nil), addrs...),
	}
}

// ServiceName returns the configured service name.
func (r *Resolver) ServiceName() string { return r.service }

// PeerAddresses returns the current member list.
func (r *Resolver) PeerAddresses(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]string(nil), r.addrs...), nil
}

// ServicePort returns the configured shared port.
func (r *Resolver) ServicePort(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return 0, r.err
	}
	if r.port <= 0 {
		return 0, resolver.ErrNoPort
	}
	return r.port, nil
}

// SetAddresses replaces the member list.
func (r *Resolver) SetAddresses(addrs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addrs = append([]string(nil), addrs...)
}

// SetError makes subsequent lookups fail with err until cleared with nil.
func (r *Resolver) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Compile-time check.
var _ resolver.Resolver = (*Resolver)(nil)
