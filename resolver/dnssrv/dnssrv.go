// Package dnssrv provides a Resolver that discovers service members through
// DNS. Member addresses come from A/AAAA records on the service name, the
// way headless services publish one record per backing pod; the shared port
// comes from the configuration or, when unset, from an SRV lookup on the
// same name.
package dnssrv

import (
	"context"
	"fmt"
	"time"

	"github.com/miekg/dns"

	"github.com/kbukum/peertrack/resolver"
)

// Config configures the DNS resolver.
type Config struct {
	// Service is the DNS name whose records list the service members.
	Service string `mapstructure:"service"`

	// Server is the DNS server to query (host:port). When empty the
	// servers from /etc/resolv.conf are used.
	Server string `mapstructure:"server"`

	// Port is the shared service port. When zero, an SRV lookup on the
	// service name supplies it.
	Port int `mapstructure:"port"`

	// Timeout bounds a single DNS exchange.
	Timeout time.Duration `mapstructure:"timeout"`

	// IPv6 includes AAAA records in member lookups.
	IPv6 bool `mapstructure:"ipv6"`
}

// ApplyDefaults fills zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.Service == "" {
		return fmt.Errorf("dnssrv: service is required")
	}
	return nil
}

// Resolver implements resolver.Resolver over DNS lookups.
type Resolver struct {
	cfg     Config
	client  *dns.Client
	servers []string
}

// New creates a DNS Resolver from the given Config.
func New(cfg Config) (*Resolver, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	servers := []string{cfg.Server}
	if cfg.Server == "" {
		cc, err := dns.ClientConfigFromFile("/etc/resolv.conf")
		if err != nil {
			return nil, fmt.Errorf("dnssrv: read resolv.conf: %w", err)
		}
		if len(cc.Servers) == 0 {
			return nil, fmt.Errorf("dnssrv: no nameservers in resolv.conf")
		}
		servers = servers[:0]
		for _, s := range cc.Servers {
			servers = append(servers, s+":"+cc.Port)
		}
	}

	return &Resolver{
		cfg:     cfg,
		client:  &dns.Client{Net: "udp", Timeout: cfg.Timeout},
		servers: servers,
	}, nil
}

// ServiceName returns the configured service name.
func (r *Resolver) ServiceName() string { return r.cfg.Service }

// PeerAddresses resolves the A (and optionally AAAA) records of the service
// name and returns the addresses they carry.
func (r *Resolver) PeerAddresses(ctx context.Context) ([]string, error) {
	var addrs []string

	msg, err := r.exchange(ctx, dns.TypeA)
	if err != nil {
		return nil, err
	}
	for _, rr := range msg.Answer {
		if a, ok := rr.(*dns.A); ok {
			addrs = append(addrs, a.A.String())
		}
	}

	if r.cfg.IPv6 {
		msg, err = r.exchange(ctx, dns.TypeAAAA)
		if err != nil {
			return nil, err
		}
		for _, rr := range msg.Answer {
			if aaaa, ok := rr.(*dns.AAAA); ok {
				addrs = append(addrs, aaaa.AAAA.String())
			}
		}
	}

	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s", resolver.ErrNoPeers, r.cfg.Service)
	}
	return addrs, nil
}

// ServicePort returns the configured port, falling back to the port carried
// by the service's SRV records.
func (r *Resolver) ServicePort(ctx context.Context) (int, error) {
	if r.cfg.Port > 0 {
		return r.cfg.Port, nil
	}

	msg, err := r.exchange(ctx, dns.TypeSRV)
	if err != nil {
		return 0, err
	}
	for _, rr := range msg.Answer {
		if srv, ok := rr.(*dns.SRV); ok {
			return int(srv.Port), nil
		}
	}
	return 0, fmt.Errorf("%w: %s", resolver.ErrNoPort, r.cfg.Service)
}

// exchange queries every configured server in order and returns the first
// usable response.
func (r *Resolver) exchange(ctx context.Context, qtype uint16) (*dns.Msg, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(r.cfg.Service), qtype)

	var lastErr error
	for _, server := range r.servers {
		resp, _, err := r.client.ExchangeContext(ctx, m, server)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Rcode == dns.RcodeNameError {
			return nil, fmt.Errorf("%w: %s", resolver.ErrServiceNotFound, r.cfg.Service)
		}
		if resp.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("dnssrv: query %s %s: rcode %s",
				r.cfg.Service, dns.TypeToString[qtype], dns.RcodeToString[resp.Rcode])
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("dnssrv: query %s %s: %w", r.cfg.Service, dns.TypeToString[qtype], lastErr)
}

// Compile-time check.
var _ resolver.Resolver = (*Resolver)(nil)
