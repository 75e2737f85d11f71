package util

import (
	"net"
	"net/http"
	"strings"
)

// ipHeaders lists the proxy headers inspected for the client address, in
// precedence order. CDN-specific headers win over the generic forwarded chain.
var ipHeaders = []string{
	"CF-Connecting-IP",
	"X-Real-IP",
	"X-Forwarded-For",
}

// ClientIP extracts the originating client address from proxy headers,
// falling back to the socket's remote address. Returns "" when no usable
// address can be determined; callers are expected to fail open.
func ClientIP(r *http.Request) string {
	for _, h := range ipHeaders {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		// X-Forwarded-For may carry a chain; the left-most entry is the client.
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = v[:i]
		}
		if ip := strings.TrimSpace(v); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, e.g. in tests.
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return ""
	}
	return host
}

// IPHeaderInspection reports each inspected header's raw value plus the
// derived address. Used by the check-ip diagnostic endpoint.
func IPHeaderInspection(r *http.Request) map[string]string {
	out := make(map[string]string, len(ipHeaders)+2)
	for _, h := range ipHeaders {
		out[h] = r.Header.Get(h)
	}
	out["RemoteAddr"] = r.RemoteAddr
	out["detected"] = ClientIP(r)
	return out
}
