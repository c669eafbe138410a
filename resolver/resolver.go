package resolver

import (
	"context"
	"errors"
)

// Common resolver errors.
var (
	// ErrServiceNotFound indicates the service name is unknown to the backend.
	ErrServiceNotFound = errors.New("service not found")
	// ErrNoPeers indicates the service resolved to an empty member set.
	ErrNoPeers = errors.New("no peers found")
	// ErrNoPort indicates the backend could not determine the shared service port.
	ErrNoPort = errors.New("service port unknown")
)

// Resolver reports the current membership of a logical service: the set of
// peer addresses behind the service name and the port those peers share.
//
// Implementations must be safe for use from the tracker's polling goroutine
// concurrently with other callers. Errors are recoverable from the caller's
// point of view: a failed lookup means "no change this cycle" and the next
// poll retries.
type Resolver interface {
	// ServiceName returns the logical service whose members are resolved.
	ServiceName() string

	// PeerAddresses returns the current member addresses of the service.
	PeerAddresses(ctx context.Context) ([]string, error)

	// ServicePort returns the port shared by all members of the service.
	ServicePort(ctx context.Context) (int, error)
}
