package inbound

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/tailor/internal/pkg/jwt"
	"github.com/shandysiswandi/tailor/internal/pkg/router"
)

// RoleUser is the casbin subject of API-key callers.
const RoleUser = "user"

// middlewareAPIKey resolves the X-API-Key header into user claims. Requests
// without the header keep whatever bearer claims the router attached.
func middlewareAPIKey(uc uc) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(router.HeaderAPIKey))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := uc.ResolveAPIKey(r.Context(), key)
			if err != nil {
				router.WriteError(w, err)
				return
			}

			ctx := jwt.SetAuth(r.Context(), jwt.Claims{UserID: userID, Role: RoleUser})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
