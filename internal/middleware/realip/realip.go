// Package realip resolves the real client IP behind trusted reverse
// proxies and stashes it on the request context for downstream
// middleware (logging, rate limiting).
package realip

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey struct{}

// Config controls X-Forwarded-For handling. With TrustProxy off the
// resolver only ever reports RemoteAddr.
type Config struct {
	TrustProxy     bool
	TrustedProxies []string // CIDR ranges, bare IPs accepted too
}

// Resolver holds the parsed trusted-proxy networks.
type Resolver struct {
	trustProxy bool
	trusted    []*net.IPNet
}

// NewResolver parses cfg.TrustedProxies. Entries that parse as neither
// a CIDR nor a single IP are ignored.
func NewResolver(cfg Config) *Resolver {
	r := &Resolver{trustProxy: cfg.TrustProxy}
	if !cfg.TrustProxy {
		return r
	}
	for _, entry := range cfg.TrustedProxies {
		if _, network, err := net.ParseCIDR(entry); err == nil {
			r.trusted = append(r.trusted, network)
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			r.trusted = append(r.trusted, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
		}
	}
	return r
}

// Middleware resolves the client IP for each request and stores it in
// the request context.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip := r.resolve(req)
		ctx := context.WithValue(req.Context(), contextKey{}, ip)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// FromRequest returns the resolved client IP, falling back to
// RemoteAddr when no resolver ran.
func FromRequest(r *http.Request) string {
	if ip, ok := r.Context().Value(contextKey{}).(string); ok && ip != "" {
		return ip
	}
	return stripPort(r.RemoteAddr)
}

func (r *Resolver) resolve(req *http.Request) string {
	remote := stripPort(req.RemoteAddr)
	if !r.trustProxy || !r.isTrusted(remote) {
		return remote
	}

	xff := req.Header.Get("X-Forwarded-For")
	if xff == "" {
		if xri := strings.TrimSpace(req.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
		return remote
	}

	// Walk the chain right to left. The first hop that is not one of
	// our proxies is the client.
	hops := strings.Split(xff, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !r.isTrusted(hop) {
			return hop
		}
	}

	// Every hop was a trusted proxy, take the leftmost entry.
	if first := strings.TrimSpace(hops[0]); first != "" {
		return first
	}
	return remote
}

func (r *Resolver) isTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, network := range r.trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func stripPort(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
