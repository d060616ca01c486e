package httpapi

import (
	"net/http"
	"strings"

	"github.com/campus-carpool/rides-api/internal/ports/out/userrepo"
)

// NewAuthMiddleware resolves the opaque `token` request header to a user and
// stores their ID in the request context. Everything under /ride requires it;
// /healthz and /metrics stay open for infra checks.
func NewAuthMiddleware(users userrepo.Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimSpace(r.Header.Get("token"))
			if token == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing token header", nil)
				return
			}
			u, err := users.GetByToken(r.Context(), token)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), u.ID)))
		})
	}
}
