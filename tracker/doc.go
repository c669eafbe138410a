// Package tracker maintains a live view of the peers behind a logical
// service name. A periodic poll resolves the current member set, diffs it
// against the tracked set, and notifies a Listener of additions and
// removals. Reported connection failures put an endpoint into an
// exponential-backoff retry cycle; endpoints that keep failing fast are
// permanently excluded until the service reports them again.
//
// The tracker performs no network I/O of its own. Resolving membership is
// delegated to a resolver.Resolver and opening connections is the caller's
// business; the tracker only decides when an endpoint should be considered
// reachable.
package tracker
