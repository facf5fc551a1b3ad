package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// proxyHeaders are read in order when the proxy in front is trusted.
// X-Forwarded-For contributes its left-most entry only.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// ParseHostNoPort strips the port from "host:port" or "[v6]:port".
// Anything else is returned unchanged.
func ParseHostNoPort(s string) string {
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return s
}

// ClientIP resolves the address a request came from. Proxy headers are only
// honoured with trustProxy, when navkit is reachable through a proxy alone.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, name := range proxyHeaders {
			v, _, _ := strings.Cut(r.Header.Get(name), ",")
			if v = strings.TrimSpace(v); v != "" {
				return ParseHostNoPort(v)
			}
		}
	}
	return ParseHostNoPort(r.RemoteAddr)
}

// IPMatcher allows addresses covered by a list of IPs and CIDRs.
type IPMatcher struct {
	prefixes []netip.Prefix
	invalid  []string
}

// NewIPMatcher parses list. Single IPs become full-length prefixes; entries
// that are neither are kept aside for Invalid.
func NewIPMatcher(list []string) *IPMatcher {
	m := &IPMatcher{}
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			m.prefixes = append(m.prefixes, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(s); err == nil {
			m.prefixes = append(m.prefixes, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		m.invalid = append(m.invalid, s)
	}
	return m
}

// Invalid returns the entries that were neither an IP nor a CIDR.
func (m *IPMatcher) Invalid() []string {
	return m.invalid
}

func (m *IPMatcher) IsEmpty() bool {
	return len(m.prefixes) == 0
}

func (m *IPMatcher) Allow(ip string) bool {
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range m.prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
