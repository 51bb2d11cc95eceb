package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedRouter(t *testing.T, manager *TokenManager) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/checkout", func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(principal.Service))
	})

	protected := RequireScope(MustParseScope("payments:refund"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	mux.Handle("/refunds", protected)

	return Middleware(manager, "/health")(mux)
}

func TestMiddleware(t *testing.T) {
	manager := testManager(t)
	handler := authedRouter(t, manager)
	ctx := context.Background()

	checkoutToken, err := manager.GetOrIssue(ctx, "checkout")
	require.NoError(t, err)
	inventoryToken, err := manager.GetOrIssue(ctx, "inventory")
	require.NoError(t, err)
	expiredToken, err := manager.IssueToken(ctx, "checkout", nil, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name           string
		path           string
		token          string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "exempt path needs no token",
			path:           "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing token rejected before handler",
			path:           "/checkout",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed token rejected",
			path:           "/checkout",
			token:          "garbage",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token rejected",
			path:           "/checkout",
			token:          expiredToken.Value,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "valid token passes with principal in context",
			path:           "/checkout",
			token:          checkoutToken.Value,
			expectedStatus: http.StatusOK,
			expectedBody:   "checkout",
		},
		{
			name:           "authenticated but missing scope",
			path:           "/refunds",
			token:          inventoryToken.Value,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "wildcard scope satisfies requirement",
			path:           "/refunds",
			token:          checkoutToken.Value,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set(TokenHeader, tt.token)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, rec.Body.String())
			}
		})
	}
}

func TestRequireScope_WithoutMiddleware(t *testing.T) {
	handler := RequireScope(MustParseScope("payments:refund"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/refunds", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
