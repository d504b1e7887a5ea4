package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/tailor/internal/pkg/instrument"
	"github.com/shandysiswandi/tailor/internal/pkg/uid"
)

const (
	// HeaderCorrelationID is the canonical header used to track requests end-to-end.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is an accepted alternative set by some proxies.
	HeaderRequestID = "X-Request-ID"

	maxCorrelationIDLen = 128
)

// cleanCID rejects header-injection attempts and bounds the length.
func cleanCID(v string) string {
	v = strings.TrimSpace(v)
	if strings.ContainsAny(v, "\r\n") {
		return ""
	}
	if len(v) > maxCorrelationIDLen {
		v = v[:maxCorrelationIDLen]
	}
	return v
}

func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := cleanCID(r.Header.Get(HeaderCorrelationID))
			if cid == "" {
				cid = cleanCID(r.Header.Get(HeaderRequestID))
			}
			if cid == "" && gen != nil {
				cid = gen.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(instrument.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}
