package tracker

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/kbukum/peertrack/component"
	"github.com/kbukum/peertrack/logger"
	"github.com/kbukum/peertrack/resolver"
	"github.com/kbukum/peertrack/telemetry"
)

// Listener receives endpoint membership notifications. Both callbacks are
// fire-and-forget: the tracker does not wait for the listener to act on
// them. A listener may call ReportFailure synchronously from either
// callback; no tracker lock is held while a callback runs.
type Listener interface {
	// OnEndpointAdd reports that an endpoint joined the reachable set.
	OnEndpointAdd(ep *Endpoint)

	// OnEndpointRemove reports that an endpoint left the reachable set.
	OnEndpointRemove(ep *Endpoint)
}

// Tracker polls a Resolver for the members of a service, reconciles the
// result against its tracked set, and drives the per-endpoint reconnect
// backoff cycle. It implements component.Component.
type Tracker struct {
	cfg      Config
	resolver resolver.Resolver
	listener Listener
	log      *logger.Logger
	clk      clock.Clock

	// mu guards the tracked map and lifecycle state. Lock order: mu before
	// any Endpoint.mu, never the reverse. No listener callback runs with
	// mu held.
	mu        sync.Mutex
	endpoints map[string]*Endpoint
	sched     *scheduler
	gen       uint64
	localAddr string
	running   bool
	cancel    context.CancelFunc
	runCtx    context.Context
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock substitutes the wall clock, typically with a mock in tests.
func WithClock(clk clock.Clock) Option {
	return func(t *Tracker) { t.clk = clk }
}

// New creates a Tracker. The resolver supplies service membership, the
// listener receives add/remove notifications.
func New(cfg Config, res resolver.Resolver, l Listener, log *logger.Logger, opts ...Option) (*Tracker, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tracker config: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("tracker: resolver is required")
	}
	if l == nil {
		return nil, fmt.Errorf("tracker: listener is required")
	}

	t := &Tracker{
		cfg:      cfg,
		resolver: res,
		listener: l,
		log:      log.WithComponent("tracker"),
		clk:      clock.New(),
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Compile-time check.
var _ component.Component = (*Tracker)(nil)

// Name returns the component name.
func (t *Tracker) Name() string { return "tracker" }

// Start begins polling: once immediately, then every query interval. The
// tracked set starts empty on every Start.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}

	local := t.cfg.LocalAddress
	if local == "" {
		ip, err := localIP()
		if err != nil {
			return fmt.Errorf("tracker: resolve local address: %w", err)
		}
		local = ip
	}
	t.localAddr = local

	t.log.Info("starting peer tracker", map[string]interface{}{
		logger.FieldService: t.resolver.ServiceName(),
		"transport":         t.cfg.TransportType,
		"interval":          t.cfg.QueryInterval.String(),
	})

	t.gen++
	t.endpoints = make(map[string]*Endpoint)
	t.runCtx, t.cancel = context.WithCancel(context.Background())
	t.sched = newScheduler(t.clk, t.log)
	t.sched.Start()
	t.running = true
	t.sched.RunPeriodically(t.reconcile, t.cfg.QueryInterval)
	return nil
}

// Stop halts polling and discards all tracked state. Reconnect callbacks
// already queued resolve to no-ops. A subsequent Start begins from empty.
func (t *Tracker) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return nil
	}

	t.log.Info("stopping peer tracker", map[string]interface{}{
		logger.FieldService: t.resolver.ServiceName(),
	})

	t.sched.Stop()
	t.cancel()
	t.endpoints = nil
	t.running = false
	telemetry.TrackedEndpoints.Set(0)
	return nil
}

// Health reports the tracker's component health.
func (t *Tracker) Health(ctx context.Context) component.Health {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return component.Health{
			Name:    t.Name(),
			Status:  component.StatusUnhealthy,
			Message: "not started",
		}
	}
	return component.Health{
		Name:    t.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("tracking %d endpoints", len(t.endpoints)),
	}
}

// Describe returns summary info for startup logging.
func (t *Tracker) Describe() component.Description {
	return component.Description{
		Name: "Tracker",
		Type: "discovery",
		Details: fmt.Sprintf("service=%s transport=%s interval=%s",
			t.resolver.ServiceName(), t.cfg.TransportType, t.cfg.QueryInterval),
	}
}

// ReportFailure notifies the tracker that the connection to a previously
// added endpoint has failed. Handles referring to an endpoint that is no
// longer tracked, or to a superseded instance for the same address, are
// silently ignored.
func (t *Tracker) ReportFailure(ep *Endpoint) {
	if ep == nil {
		return
	}
	t.fail(ep)
}

// Tracked returns the addresses currently in the tracked set, sorted.
func (t *Tracker) Tracked() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	addrs := make([]string, 0, len(t.endpoints))
	for addr := range t.endpoints {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

// reconcile is the periodic poll task. It resolves current membership and
// diffs it against the tracked map: disappeared endpoints are removed and
// the removal notified, surviving ones re-confirmed via present, new ones
// inserted and the addition notified. A resolution error aborts the cycle
// without touching state; the next tick retries.
func (t *Tracker) reconcile() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	runCtx := t.runCtx
	t.mu.Unlock()

	ctx, cancelResolve := context.WithTimeout(runCtx, t.cfg.ResolveTimeout)
	defer cancelResolve()

	addrs, err := t.resolver.PeerAddresses(ctx)
	if err != nil {
		t.log.Error("peer resolution failed", map[string]interface{}{
			logger.FieldService: t.resolver.ServiceName(),
			logger.FieldError:   err.Error(),
		})
		telemetry.PollCycles.WithLabelValues("error").Inc()
		return
	}
	port, err := t.resolver.ServicePort(ctx)
	if err != nil {
		t.log.Error("service port resolution failed", map[string]interface{}{
			logger.FieldService: t.resolver.ServiceName(),
			logger.FieldError:   err.Error(),
		})
		telemetry.PollCycles.WithLabelValues("error").Inc()
		return
	}

	observed := make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		observed[a] = struct{}{}
	}

	var added, removed []*Endpoint

	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	for addr, ep := range t.endpoints {
		if _, ok := observed[addr]; !ok {
			delete(t.endpoints, addr)
			removed = append(removed, ep)
		}
	}
	for addr := range observed {
		if ep, ok := t.endpoints[addr]; ok {
			t.present(ep)
			continue
		}
		if addr == t.localAddr {
			continue
		}
		ep := newEndpoint(t.cfg.TransportType, addr, port, t.gen, t.clk.Now(), t.cfg.InitialReconnectDelay)
		t.endpoints[addr] = ep
		added = append(added, ep)
	}
	telemetry.TrackedEndpoints.Set(float64(len(t.endpoints)))
	t.mu.Unlock()

	for _, ep := range removed {
		t.log.Info("removing endpoint", map[string]interface{}{logger.FieldEndpoint: ep.String()})
		t.listener.OnEndpointRemove(ep)
		telemetry.EndpointsRemoved.Inc()
	}
	for _, ep := range added {
		t.log.Info("adding endpoint", map[string]interface{}{logger.FieldEndpoint: ep.String()})
		t.listener.OnEndpointAdd(ep)
		telemetry.EndpointsAdded.Inc()
	}
	telemetry.PollCycles.WithLabelValues("ok").Inc()
}

// present re-confirms a healthy endpoint, forgiving prior backoff growth.
// No-op while the endpoint is failed; only reconnect resurrects a failed
// endpoint. Caller holds t.mu.
func (t *Tracker) present(ep *Endpoint) {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	if ep.failed {
		return
	}
	ep.connectFailures = 0
	ep.reconnectDelay = t.cfg.InitialReconnectDelay
}

// fail transitions an endpoint into the failed state. A failure within
// MinConnectTime of the last connect counts against the endpoint and
// retries on the current backoff delay; a failure after a longer-lived
// connection retries after MinConnectTime flat, without penalty. Once the
// fast-failure count reaches the configured cap the endpoint is excluded
// for the lifetime of this instance.
func (t *Tracker) fail(ep *Endpoint) {
	t.mu.Lock()
	if !t.trackedLocked(ep) {
		t.mu.Unlock()
		return
	}
	sched := t.sched

	ep.mu.Lock()
	if ep.failed {
		ep.mu.Unlock()
		t.mu.Unlock()
		return
	}
	retryDelay := t.cfg.MinConnectTime
	if t.clk.Now().Sub(ep.connectTime) < t.cfg.MinConnectTime {
		ep.connectFailures++
		retryDelay = ep.reconnectDelay
	}
	ep.failed = true
	failures := ep.connectFailures
	ep.mu.Unlock()
	t.mu.Unlock()

	telemetry.ConnectFailures.Inc()
	t.listener.OnEndpointRemove(ep)
	telemetry.EndpointsRemoved.Inc()

	if t.cfg.MaxReconnectAttempts > 0 && failures >= t.cfg.MaxReconnectAttempts {
		t.log.Warn("reconnect attempts exhausted, endpoint disabled", map[string]interface{}{
			logger.FieldEndpoint: ep.String(),
			"attempts":           t.cfg.MaxReconnectAttempts,
		})
		telemetry.EndpointsExcluded.Inc()
		return
	}

	telemetry.ReconnectsScheduled.Inc()
	sched.AfterDelay(func() { t.reconnect(ep) }, retryDelay)
}

// reconnect fires after a failed endpoint's retry delay. It doubles the
// backoff delay up to the cap, marks the endpoint present again, and
// re-notifies the addition. Stale callbacks, including ones queued before
// a stop or restart, find the endpoint no longer tracked and return.
func (t *Tracker) reconnect(ep *Endpoint) {
	t.mu.Lock()
	if !t.trackedLocked(ep) {
		t.mu.Unlock()
		return
	}

	ep.mu.Lock()
	ep.reconnectDelay *= 2
	if ep.reconnectDelay > t.cfg.MaxReconnectDelay {
		ep.reconnectDelay = t.cfg.MaxReconnectDelay
	}
	ep.connectTime = t.clk.Now()
	ep.failed = false
	ep.mu.Unlock()
	t.mu.Unlock()

	t.log.Info("re-adding endpoint", map[string]interface{}{logger.FieldEndpoint: ep.String()})
	t.listener.OnEndpointAdd(ep)
	telemetry.EndpointsAdded.Inc()
}

// trackedLocked reports whether ep is the instance currently installed in
// the tracked map for its address, and from the current start generation.
// Caller holds t.mu.
func (t *Tracker) trackedLocked(ep *Endpoint) bool {
	if ep.gen != t.gen {
		return false
	}
	cur, ok := t.endpoints[ep.address]
	return ok && cur == ep
}

// localIP determines the address this node resolves to, so the tracker can
// avoid registering itself as a peer.
func localIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
