package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const maxResponseBody = 1 << 20

// TransportError wraps network-level failures of an outbound call. Callers
// treat these as retriable.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx response from a downstream service.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("downstream returned status %d: %s", e.StatusCode, string(e.Body))
}

// Temporary reports whether the status indicates a retriable condition.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// IsAuthFailure reports whether the error is a downstream auth rejection.
// Retrying with the same token cannot succeed, so callers treat these as
// permanent.
func IsAuthFailure(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden
	}
	return false
}

// Client wraps outbound HTTP calls with the caller's own service token and
// pass-through trace context.
type Client struct {
	httpClient *http.Client
	tokens     *TokenManager
	service    string
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates an authenticated client acting as the given service.
func NewClient(tokens *TokenManager, service string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		service:    service,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Do resolves the caller's token, attaches it and the ambient trace context
// to the request, and executes it.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	token, err := c.tokens.GetOrIssue(req.Context(), c.service)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve service token")
	}

	req.Header.Set(TokenHeader, token.Value)
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	return resp, nil
}

// PostJSON posts a JSON body and decodes a 2xx JSON response into out.
// Non-2xx responses surface as *StatusError, network failures as
// *TransportError, so the caller can classify them.
func (c *Client) PostJSON(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: respBody}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errors.Wrap(err, "failed to decode response body")
		}
	}

	return nil
}
