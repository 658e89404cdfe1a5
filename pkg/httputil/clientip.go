package httputil

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/platinummonkey/bookshelf/pkg/contextkeys"
)

// TrustedProxies lists the direct peers allowed to report the client address
// through X-Forwarded-For or X-Real-IP. The zero value trusts no one.
type TrustedProxies []*net.IPNet

// ParseTrustedProxies accepts CIDR blocks or bare addresses
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	var proxies TrustedProxies
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 8 * net.IPv6len
			if ip4 := ip.To4(); ip4 != nil {
				ip, bits = ip4, 8*net.IPv4len
			}
			proxies = append(proxies, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		proxies = append(proxies, network)
	}
	return proxies, nil
}

// Contains reports whether ip belongs to a trusted proxy
func (p TrustedProxies) Contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, network := range p {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// Resolve returns the client address of r without its port.
// Proxy headers are only read when the direct peer is trusted. X-Forwarded-For is
// walked from the right, skipping trusted hops, so a client cannot prepend its own.
func (p TrustedProxies) Resolve(r *http.Request) string {
	peer := peerIP(r.RemoteAddr)
	if !p.Contains(peer) {
		if peer == nil {
			return strings.TrimSpace(r.RemoteAddr)
		}
		return peer.String()
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil {
				break
			}
			if !p.Contains(ip) {
				return ip.String()
			}
		}
	}

	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return peer.String()
}

func peerIP(remoteAddr string) net.IP {
	remoteAddr = strings.TrimSpace(remoteAddr)
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		remoteAddr = host
	}
	return net.ParseIP(remoteAddr)
}

// ClientIPMiddleware resolves the client address once and stores it on the context
func ClientIPMiddleware(proxies TrustedProxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := contextkeys.WithClientIP(r.Context(), proxies.Resolve(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP returns the address stored by ClientIPMiddleware, or the direct peer
// without its port when the middleware did not run.
func ClientIP(r *http.Request) string {
	if ip := contextkeys.GetClientIP(r.Context()); ip != "" {
		return ip
	}
	return TrustedProxies(nil).Resolve(r)
}
