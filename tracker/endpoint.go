package tracker

import (
	"fmt"
	"sync"
	"time"
)

// Endpoint is the handle for one tracked peer address. The tracker creates
// an Endpoint when an address first appears in the resolved member set,
// passes the same instance to the Listener on every add and remove
// notification, and receives it back through ReportFailure.
//
// Endpoints carry the per-address failure state: how many times the
// connection died quickly, the current backoff delay, and whether the
// endpoint is presently considered failed. A handle outlives its slot in
// the tracked set only as a stale reference; the tracker detects and
// ignores such handles by identity and generation.
type Endpoint struct {
	uri     string
	address string
	gen     uint64

	mu              sync.Mutex
	connectFailures int
	reconnectDelay  time.Duration
	connectTime     time.Time
	failed          bool
}

func newEndpoint(transport, address string, port int, gen uint64, now time.Time, initialDelay time.Duration) *Endpoint {
	return &Endpoint{
		uri:            fmt.Sprintf("%s://%s:%d", transport, address, port),
		address:        address,
		gen:            gen,
		reconnectDelay: initialDelay,
		connectTime:    now,
	}
}

// URI returns the endpoint's connection URI, e.g. "tcp://10.0.0.1:61616".
func (e *Endpoint) URI() string { return e.uri }

// Address returns the bare peer address the endpoint was resolved from.
func (e *Endpoint) Address() string { return e.address }

// Failed reports whether the endpoint is currently considered failed.
func (e *Endpoint) Failed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failed
}

// ConnectFailures returns the number of fast connection failures recorded
// since the endpoint was last seen healthy.
func (e *Endpoint) ConnectFailures() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connectFailures
}

func (e *Endpoint) String() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fmt.Sprintf("[%s, failed:%t, connectFailures:%d]", e.uri, e.failed, e.connectFailures)
}
