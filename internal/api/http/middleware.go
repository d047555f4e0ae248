package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/Prosparity-git/collection/internal/security"
)

type contextKey string

const actorKey contextKey = "actor"

// ActorFromContext returns the authenticated actor identifier attached by
// the middleware, or "" for unauthenticated requests.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey).(string)
	return actor
}

// ActorMiddleware reads the bearer token the upstream auth service issued
// and threads the actor identifier through the request context. It enforces
// presence only on mutating methods; read endpoints stay open to internal
// dashboards.
func ActorMiddleware(verifier security.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				if r.Method == http.MethodGet {
					next.ServeHTTP(w, r)
					return
				}
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Message: "missing bearer token"})
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")
			claims, err := verifier.VerifyToken(tokenString)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Message: err.Error()})
				return
			}
			ctx := context.WithValue(r.Context(), actorKey, claims.Actor())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
