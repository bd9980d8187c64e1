package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
)

type sourceAddrKey struct{}

// SourceAddr returns the client address the dispatcher resolved for the
// request: the peer address, or the nearest untrusted hop from forwarded
// headers when the peer is a trusted proxy. Empty when called on a request
// that did not pass through the dispatcher.
func SourceAddr(r *http.Request) string {
	addr, _ := r.Context().Value(sourceAddrKey{}).(string)
	return addr
}

func withSourceAddr(r *http.Request, addr string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sourceAddrKey{}, addr))
}

// proxyMatcher answers whether a peer IP belongs to the configured set of
// trusted proxies.
type proxyMatcher struct {
	ips  map[string]struct{}
	nets []*net.IPNet
}

func newProxyMatcher(entries []string, logger *slog.Logger) *proxyMatcher {
	ips := make(map[string]struct{})
	var nets []*net.IPNet

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			_, network, err := net.ParseCIDR(entry)
			if err != nil {
				logger.Warn("invalid trusted proxy CIDR", "entry", entry, "error", err)
				continue
			}
			nets = append(nets, network)
			continue
		}
		ip := net.ParseIP(entry)
		if ip == nil {
			logger.Warn("invalid trusted proxy IP", "entry", entry)
			continue
		}
		ips[ip.String()] = struct{}{}
	}

	if len(ips) == 0 && len(nets) == 0 {
		return nil
	}
	return &proxyMatcher{ips: ips, nets: nets}
}

func (m *proxyMatcher) isTrusted(ip net.IP) bool {
	if m == nil || ip == nil {
		return false
	}
	if _, ok := m.ips[ip.String()]; ok {
		return true
	}
	for _, network := range m.nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// resolveSourceAddr picks the client IP for a request. The peer address
// wins unless it is a trusted proxy, in which case the rightmost untrusted
// entry of X-Forwarded-For is used.
func resolveSourceAddr(r *http.Request, trusted *proxyMatcher) string {
	peer := parseHostIP(r.RemoteAddr)
	if peer == nil {
		return r.RemoteAddr
	}
	if !trusted.isTrusted(peer) {
		return peer.String()
	}

	var hops []net.IP
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := parseHostIP(part); ip != nil {
			hops = append(hops, ip)
		}
	}
	for i := len(hops) - 1; i >= 0; i-- {
		if !trusted.isTrusted(hops[i]) {
			return hops[i].String()
		}
	}
	if len(hops) > 0 {
		return hops[0].String()
	}
	return peer.String()
}

// parseHostIP parses an IP from "host", "host:port", or a bracketed IPv6
// form, tolerating surrounding noise.
func parseHostIP(value string) net.IP {
	host := strings.Trim(strings.TrimSpace(value), "\"")
	if host == "" {
		return nil
	}
	if strings.HasPrefix(host, "[") {
		if end := strings.Index(host, "]"); end != -1 {
			host = host[1:end]
		}
	} else if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if zone := strings.Index(host, "%"); zone != -1 {
		host = host[:zone]
	}
	return net.ParseIP(host)
}
