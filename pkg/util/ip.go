package util

import (
	"net/netip"
)

// ParsePrefix parses an IPv4 or IPv6 network prefix in CIDR notation and
// returns it in canonical (masked) form, so "10.1.2.3/24" and "10.1.2.0/24"
// parse to the same value.
func ParsePrefix(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, NewInvalidArgumentError("parse prefix", "invalid CIDR notation '%s'", s)
	}
	return p.Masked(), nil
}

// ParseAddr parses an IPv4 or IPv6 address.
func ParseAddr(s string) (netip.Addr, error) {
	a, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, NewInvalidArgumentError("parse address", "invalid IP address '%s'", s)
	}
	return a, nil
}

// ParsePrefixOrAddr parses either CIDR notation or a bare address; a bare
// address becomes a host prefix (/32 for v4, /128 for v6). Used by CLI
// commands that accept both forms.
func ParsePrefixOrAddr(s string) (netip.Prefix, error) {
	if p, err := netip.ParsePrefix(s); err == nil {
		return p.Masked(), nil
	}
	a, err := ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, NewInvalidArgumentError("parse prefix", "'%s' is neither a CIDR prefix nor an IP address", s)
	}
	return netip.PrefixFrom(a, a.BitLen()), nil
}
