package tracker

import (
	"fmt"
	"time"
)

// Config holds tracker configuration. The zero value is usable after
// ApplyDefaults.
type Config struct {
	// QueryInterval is the period between membership polls.
	QueryInterval time.Duration `mapstructure:"query_interval"`

	// TransportType tags endpoint URIs, e.g. "tcp" or "amqp".
	TransportType string `mapstructure:"transport_type"`

	// MinConnectTime is the minimum time a connection must survive for its
	// failure to count as a transient outage rather than a fast failure.
	MinConnectTime time.Duration `mapstructure:"min_connect_time"`

	// InitialReconnectDelay is the backoff starting point for a failed
	// endpoint. Defaults to MinConnectTime.
	InitialReconnectDelay time.Duration `mapstructure:"initial_reconnect_delay"`

	// MaxReconnectDelay caps the exponential backoff.
	MaxReconnectDelay time.Duration `mapstructure:"max_reconnect_delay"`

	// MaxReconnectAttempts is the number of fast failures after which an
	// endpoint is permanently excluded until rediscovered. A negative value
	// disables the cap; zero takes the default.
	MaxReconnectAttempts int `mapstructure:"max_reconnect_attempts"`

	// ResolveTimeout bounds the resolver calls of a single poll cycle.
	ResolveTimeout time.Duration `mapstructure:"resolve_timeout"`

	// LocalAddress is this node's own resolvable address, which is never
	// registered as a peer. Auto-detected when empty.
	LocalAddress string `mapstructure:"local_address"`
}

// ApplyDefaults fills zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.QueryInterval == 0 {
		c.QueryInterval = 30 * time.Second
	}
	if c.TransportType == "" {
		c.TransportType = "tcp"
	}
	if c.MinConnectTime == 0 {
		c.MinConnectTime = 1000 * time.Millisecond
	}
	if c.InitialReconnectDelay == 0 {
		c.InitialReconnectDelay = c.MinConnectTime
	}
	if c.MaxReconnectDelay == 0 {
		c.MaxReconnectDelay = 16000 * time.Millisecond
	}
	if c.MaxReconnectAttempts == 0 {
		c.MaxReconnectAttempts = 4
	}
	if c.ResolveTimeout == 0 {
		c.ResolveTimeout = 5 * time.Second
	}
}

// Validate checks that the configuration is consistent.
func (c *Config) Validate() error {
	if c.QueryInterval <= 0 {
		return fmt.Errorf("query_interval must be > 0")
	}
	if c.TransportType == "" {
		return fmt.Errorf("transport_type is required")
	}
	if c.MinConnectTime <= 0 {
		return fmt.Errorf("min_connect_time must be > 0")
	}
	if c.InitialReconnectDelay <= 0 {
		return fmt.Errorf("initial_reconnect_delay must be > 0")
	}
	if c.MaxReconnectDelay < c.InitialReconnectDelay {
		return fmt.Errorf("max_reconnect_delay must be >= initial_reconnect_delay")
	}
	if c.ResolveTimeout <= 0 {
		return fmt.Errorf("resolve_timeout must be > 0")
	}
	return nil
}
