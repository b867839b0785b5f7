// Package identity derives stable pseudonymous keys for a request from
// its IP, user agent and client timezone. Only one-way hashes leave this
// package; raw values are never persisted.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
)

// UnknownIP is hashed in place of an unresolvable client address. All
// unattributable traffic therefore shares one identity and one rate
// bucket, which under-limits it. Accepted limitation.
const UnknownIP = "unknown"

// TimezoneHeader carries the client-declared IANA timezone, set by the
// frontend on every submission request.
const TimezoneHeader = "X-Client-Timezone"

// ClientIP resolves the client address from proxy headers in priority
// order, falling back to the socket address, then to UnknownIP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First hop is the original client.
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if cf := r.Header.Get("CF-Connecting-IP"); cf != "" {
		return cf
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return UnknownIP
	}
	return host
}

// HashIP returns the opaque hex digest used as the IP-scope rate key.
func HashIP(ip string) string {
	if ip == "" {
		ip = UnknownIP
	}
	return digest("ip", ip)
}

// Fingerprint returns the device-scope rate key: a digest over IP, user
// agent and timezone. Shared IPs and proxies make this an approximation,
// not an identification.
func Fingerprint(ip, userAgent, timezone string) string {
	if ip == "" {
		ip = UnknownIP
	}
	return digest("fp", ip, userAgent, timezone)
}

// FromRequest derives both identity hashes for a request.
func FromRequest(r *http.Request) models.ClientIdentity {
	ip := ClientIP(r)
	return models.ClientIdentity{
		IPHash:      HashIP(ip),
		Fingerprint: Fingerprint(ip, r.UserAgent(), r.Header.Get(TimezoneHeader)),
	}
}

// digest hashes parts with a domain tag and NUL separators so distinct
// field splits can never collide.
func digest(tag string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(tag))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
