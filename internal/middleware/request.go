package middleware

import (
	"net"
	"net/http"
	"strings"
)

// Request parsing utilities

// ClientIP: alamat klien dari X-Forwarded-For (hop pertama) atau RemoteAddr.
// Hanya dipakai untuk hash statistik dan rate limiting, tidak pernah disimpan
// mentah.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ValidateLimit clamp limit pagination ke [1, 100] dengan default 20.
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
