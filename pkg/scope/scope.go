// pkg/scope/scope.go
// Package scope decides which hosts are in scope for software tracking.
package scope

import (
	"fmt"
	"net/netip"
	"strings"
)

// Policy selects which hosts the tracker records observations for.
type Policy int

const (
	// AllHosts tracks every host seen on the wire.
	AllHosts Policy = iota
	// LocalHostsOnly tracks only hosts inside the configured local networks.
	LocalHostsOnly
	// RemoteHostsOnly tracks only hosts outside the configured local networks.
	RemoteHostsOnly
	// Disabled tracks nothing.
	Disabled
)

// ParsePolicy maps the config strings all|local|remote|none onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return AllHosts, nil
	case "local":
		return LocalHostsOnly, nil
	case "remote":
		return RemoteHostsOnly, nil
	case "none":
		return Disabled, nil
	}
	return Disabled, fmt.Errorf("unknown scope policy %q (want all, local, remote or none)", s)
}

// String returns the config spelling of the policy.
func (p Policy) String() string {
	switch p {
	case AllHosts:
		return "all"
	case LocalHostsOnly:
		return "local"
	case RemoteHostsOnly:
		return "remote"
	case Disabled:
		return "none"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// Filter reports whether a host is in scope under a policy. Implementations
// are supplied by the surrounding platform; CIDRFilter is the stock one.
type Filter interface {
	InScope(host netip.Addr, policy Policy) bool
}

// CIDRFilter classifies hosts as local or remote by prefix membership.
type CIDRFilter struct {
	local []netip.Prefix
}

// DefaultLocalNetworks covers the conventional private, loopback and
// link-local ranges for both address families.
func DefaultLocalNetworks() []netip.Prefix {
	return []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("172.16.0.0/12"),
		netip.MustParsePrefix("192.168.0.0/16"),
		netip.MustParsePrefix("127.0.0.0/8"),
		netip.MustParsePrefix("169.254.0.0/16"),
		netip.MustParsePrefix("::1/128"),
		netip.MustParsePrefix("fc00::/7"),
		netip.MustParsePrefix("fe80::/10"),
	}
}

// NewCIDRFilter builds a filter from CIDR strings. An empty list falls back
// to DefaultLocalNetworks.
func NewCIDRFilter(cidrs []string) (*CIDRFilter, error) {
	if len(cidrs) == 0 {
		return &CIDRFilter{local: DefaultLocalNetworks()}, nil
	}
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		p, err := netip.ParsePrefix(strings.TrimSpace(c))
		if err != nil {
			return nil, fmt.Errorf("invalid local network %q: %w", c, err)
		}
		prefixes = append(prefixes, p)
	}
	return &CIDRFilter{local: prefixes}, nil
}

// InScope implements Filter. Hosts with no usable address are only in scope
// under AllHosts; local/remote policies need a classifiable address.
func (f *CIDRFilter) InScope(host netip.Addr, policy Policy) bool {
	switch policy {
	case AllHosts:
		return true
	case Disabled:
		return false
	case LocalHostsOnly:
		return host.IsValid() && f.isLocal(host)
	case RemoteHostsOnly:
		return host.IsValid() && !f.isLocal(host)
	}
	return false
}

func (f *CIDRFilter) isLocal(host netip.Addr) bool {
	h := host.Unmap()
	for _, p := range f.local {
		if p.Contains(h) {
			return true
		}
	}
	return false
}
