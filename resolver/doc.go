// Package resolver defines the contract for resolving the live members of a
// logical service, along with backend implementations.
//
// # Backends
//
//   - resolver/static: fixed in-memory membership for development and testing
//   - resolver/dnssrv: DNS A/AAAA + SRV lookups via miekg/dns
//   - resolver/consul: HashiCorp Consul health-filtered service queries
package resolver
