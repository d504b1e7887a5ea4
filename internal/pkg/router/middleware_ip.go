package router

import (
	"net"
	"net/http"
	"strings"
)

var ipHeaders = []string{"True-Client-IP", "X-Real-IP", "X-Forwarded-For"}

func middlewareIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := clientIP(r); ip != "" {
			r.RemoteAddr = ip
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the first valid address from proxy headers, falling back
// to the host part of RemoteAddr.
func clientIP(r *http.Request) string {
	for _, h := range ipHeaders {
		v, _, _ := strings.Cut(r.Header.Get(h), ",")
		if v = strings.TrimSpace(v); net.ParseIP(v) != nil {
			return v
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return ""
}
