package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PostJSON_AttachesServiceToken(t *testing.T) {
	manager := testManager(t)

	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get(TokenHeader)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reservation_id":"r-1"}`))
	}))
	defer server.Close()

	client := NewClient(manager, "checkout")

	var out struct {
		ReservationID string `json:"reservation_id"`
	}
	err := client.PostJSON(context.Background(), server.URL, map[string]string{"sku": "abc"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "r-1", out.ReservationID)

	require.NotEmpty(t, gotToken)
	principal, err := manager.VerifyToken(context.Background(), gotToken)
	require.NoError(t, err)
	assert.Equal(t, "checkout", principal.Service)
}

func TestClient_PostJSON_StatusErrors(t *testing.T) {
	manager := testManager(t)

	tests := []struct {
		name        string
		status      int
		temporary   bool
		authFailure bool
	}{
		{name: "server error is retriable", status: http.StatusInternalServerError, temporary: true},
		{name: "throttling is retriable", status: http.StatusTooManyRequests, temporary: true},
		{name: "bad request is permanent", status: http.StatusBadRequest},
		{name: "unauthorized is a permanent auth failure", status: http.StatusUnauthorized, authFailure: true},
		{name: "forbidden is a permanent auth failure", status: http.StatusForbidden, authFailure: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			client := NewClient(manager, "checkout")
			err := client.PostJSON(context.Background(), server.URL, map[string]string{}, nil)
			require.Error(t, err)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, tt.temporary, statusErr.Temporary())
			assert.Equal(t, tt.authFailure, IsAuthFailure(err))
		})
	}
}

func TestClient_PostJSON_TransportError(t *testing.T) {
	manager := testManager(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(manager, "checkout")
	err := client.PostJSON(context.Background(), server.URL, map[string]string{}, nil)
	require.Error(t, err)

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
	assert.False(t, IsAuthFailure(err))
}

func TestClient_Do_UnknownCallerIdentity(t *testing.T) {
	manager := testManager(t)
	client := NewClient(manager, "stranger")

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://localhost/", nil)
	require.NoError(t, err)

	_, err = client.Do(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownService)
}
