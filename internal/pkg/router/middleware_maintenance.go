package router

import (
	"net/http"
	"slices"

	"github.com/shandysiswandi/tailor/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed under
// app.maintenance.endpoints. The list is read per request so a hot-reloaded
// config takes effect without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(cfg.GetArray("app.maintenance.endpoints"), matchedRoutePath(r)) {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
