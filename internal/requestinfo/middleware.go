// internal/requestinfo/middleware.go
//
// HTTP middleware that attaches *Info to every request.
//
/*
Context
--------
Sits right after RequestID and before request logging so the access log
line can carry the client fingerprint.  For every request it:

  1. Extracts the left-most client IP from X-Forwarded-For or X-Real-IP,
     falling back to `r.RemoteAddr`.
  2. Parses the User-Agent header and Accept-Language list.
  3. Looks up the country when a GeoDB is configured.

Nothing here rejects a request.
*/
package requestinfo

import (
	"net"
	"net/http"
	"strings"
)

// Middleware returns the enrichment handler.  geo may be nil.
func Middleware(geo *GeoDB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := Parse(clientIP(r), r.UserAgent(), r.Header.Get("Accept-Language"), geo)
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), info)))
		})
	}
}

// clientIP extracts the left-most parseable address from X-Forwarded-For
// or X-Real-IP, falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return nil
}
