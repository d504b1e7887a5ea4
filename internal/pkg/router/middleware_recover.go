package router

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/shandysiswandi/tailor/internal/pkg/stacktrace"
)

func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler { //nolint:errorlint // sentinel is compared by identity
				panic(rvr)
			}

			slog.ErrorContext(r.Context(), "panic on the server",
				"because", rvr,
				"stack", stacktrace.InternalPaths(debug.Stack()),
			)
			writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
