// Package consul provides a Resolver backed by HashiCorp Consul's health
// API. Only instances passing all health checks count as members.
package consul

import (
	"context"
	"fmt"

	"github.com/hashicorp/consul/api"

	"github.com/kbukum/peertrack/resolver"
)

// Config configures the Consul resolver.
type Config struct {
	// Service is the Consul service name whose members are resolved.
	Service string `mapstructure:"service"`

	// Addr is the Consul agent address (host:port).
	Addr string `mapstructure:"addr"`

	// Scheme is the URI scheme for Consul ("http" or "https").
	Scheme string `mapstructure:"scheme"`

	// Token is the Consul ACL token for authentication.
	Token string `mapstructure:"token"`

	// Datacenter is the Consul datacenter name.
	Datacenter string `mapstructure:"datacenter"`

	// Port overrides the port reported by Consul when > 0.
	Port int `mapstructure:"port"`
}

// ApplyDefaults fills zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:8500"
	}
	if c.Scheme == "" {
		c.Scheme = "http"
	}
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.Service == "" {
		return fmt.Errorf("consul: service is required")
	}
	return nil
}

// Resolver implements resolver.Resolver over the Consul health API.
type Resolver struct {
	cfg    Config
	client *api.Client
}

// New creates a Consul Resolver from the given Config.
func New(cfg Config) (*Resolver, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	apiCfg := api.DefaultConfig()
	apiCfg.Address = cfg.Addr
	apiCfg.Scheme = cfg.Scheme
	apiCfg.Token = cfg.Token
	if cfg.Datacenter != "" {
		apiCfg.Datacenter = cfg.Datacenter
	}

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}

	return &Resolver{cfg: cfg, client: client}, nil
}

// ServiceName returns the configured service name.
func (r *Resolver) ServiceName() string { return r.cfg.Service }

// PeerAddresses queries Consul for the addresses of healthy service instances.
func (r *Resolver) PeerAddresses(ctx context.Context) ([]string, error) {
	entries, err := r.healthyEntries(ctx)
	if err != nil {
		return nil, err
	}

	addrs := make([]string, 0, len(entries))
	for _, e := range entries {
		addr := e.Service.Address
		if addr == "" {
			addr = e.Node.Address
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// ServicePort returns the configured override or the port advertised by the
// first healthy instance. All members of a peer mesh share one port, so any
// instance's registration is authoritative.
func (r *Resolver) ServicePort(ctx context.Context) (int, error) {
	if r.cfg.Port > 0 {
		return r.cfg.Port, nil
	}

	entries, err := r.healthyEntries(ctx)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if e.Service.Port > 0 {
			return e.Service.Port, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", resolver.ErrNoPort, r.cfg.Service)
}

func (r *Resolver) healthyEntries(ctx context.Context) ([]*api.ServiceEntry, error) {
	opts := (&api.QueryOptions{}).WithContext(ctx)
	entries, _, err := r.client.Health().Service(r.cfg.Service, "", true, opts)
	if err != nil {
		return nil, fmt.Errorf("consul resolve %q: %w", r.cfg.Service, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", resolver.ErrNoPeers, r.cfg.Service)
	}
	return entries, nil
}

// Compile-time check.
var _ resolver.Resolver = (*Resolver)(nil)
