// Package config loads the peertrackd daemon configuration from a YAML
// file, a .env file, and environment variables, in that order of
// precedence (later sources override earlier ones).
package config

import (
	"fmt"

	"github.com/kbukum/peertrack/logger"
	"github.com/kbukum/peertrack/resolver/consul"
	"github.com/kbukum/peertrack/resolver/dnssrv"
	"github.com/kbukum/peertrack/tracker"
)

// Resolver providers.
const (
	ProviderStatic = "static"
	ProviderDNS    = "dns"
	ProviderConsul = "consul"
)

// Config is the aggregate daemon configuration.
type Config struct {
	Logging  logger.Config  `mapstructure:"logging"`
	Tracker  tracker.Config `mapstructure:"tracker"`
	Resolver ResolverConfig `mapstructure:"resolver"`

	// MetricsAddr is the listen address for the /metrics endpoint.
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// ResolverConfig selects and configures the membership resolver backend.
type ResolverConfig struct {
	// Provider selects the backend: "dns", "consul", or "static".
	Provider string `mapstructure:"provider"`

	DNS    dnssrv.Config `mapstructure:"dns"`
	Consul consul.Config `mapstructure:"consul"`
	Static StaticConfig  `mapstructure:"static"`
}

// StaticConfig configures the static resolver backend.
type StaticConfig struct {
	Service   string   `mapstructure:"service"`
	Port      int      `mapstructure:"port"`
	Addresses []string `mapstructure:"addresses"`
}

// ApplyDefaults fills zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	c.Logging.ApplyDefaults()
	c.Tracker.ApplyDefaults()
	if c.Resolver.Provider == "" {
		c.Resolver.Provider = ProviderDNS
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9090"
	}
}

// Validate checks the aggregate configuration.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Tracker.Validate(); err != nil {
		return err
	}
	switch c.Resolver.Provider {
	case ProviderStatic:
		if c.Resolver.Static.Service == "" {
			return fmt.Errorf("resolver.static.service is required")
		}
	case ProviderDNS:
		return c.Resolver.DNS.Validate()
	case ProviderConsul:
		return c.Resolver.Consul.Validate()
	default:
		return fmt.Errorf("unsupported resolver provider %q", c.Resolver.Provider)
	}
	return nil
}
