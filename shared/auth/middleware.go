package auth

import (
	"context"
	"net/http"
)

// TokenHeader is the fixed request header carrying the service token.
const TokenHeader = "X-Service-Token"

// Verifier verifies a raw token string. Implemented by TokenManager.
type Verifier interface {
	VerifyToken(ctx context.Context, raw string) (*Principal, error)
}

type contextKey string

const principalKey contextKey = "auth.principal"

// WithPrincipal attaches a verified principal to the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the verified principal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// Middleware gates inbound requests on a verified service token. Exempt
// paths are matched exactly against an explicit allow-list; no pattern
// matching. Rejections happen before any handler logic runs.
func Middleware(verifier Verifier, exemptPaths ...string) func(http.Handler) http.Handler {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			raw := r.Header.Get(TokenHeader)
			if raw == "" {
				http.Error(w, "unauthenticated: missing service token", http.StatusUnauthorized)
				return
			}

			principal, err := verifier.VerifyToken(r.Context(), raw)
			if err != nil {
				http.Error(w, "unauthenticated: "+err.Error(), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireScope rejects requests whose verified principal does not hold the
// required scope. Must run after Middleware.
func RequireScope(required Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthenticated: no verified principal", http.StatusUnauthorized)
				return
			}

			if !principal.Scopes.Satisfies(required) {
				http.Error(w, "insufficient scope: requires "+required.String(), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
