package http

import (
	"context"
	"net/http"

	"github.com/guardstack/guardstack/internal/domain/auth"
)

// identityContextKey is the context key under which RequireAPIKey stores the
// authenticated identity.
type identityContextKey struct{}

// IdentityKey is the context key set by RequireAPIKey.
var IdentityKey = identityContextKey{}

// RequireAPIKey validates the API key extracted by APIKeyMiddleware against
// svc, rejecting the request with 401 on failure. In devMode, requests
// without an Authorization header are let through unauthenticated, matching
// the permissive defaults applied elsewhere in dev mode.
func RequireAPIKey(svc *auth.APIKeyService, devMode bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			rawKey, _ := r.Context().Value(APIKeyContextKey).(string)
			if rawKey == "" {
				if devMode {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "missing API key", http.StatusUnauthorized)
				return
			}

			identity, err := svc.Validate(r.Context(), rawKey)
			if err != nil {
				http.Error(w, "invalid API key", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
