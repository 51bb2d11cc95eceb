package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var (
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidSignature = errors.New("invalid token signature")
)

// ServiceToken is a signed service identity token. It lives in the cache for
// at most its remaining validity and is never persisted elsewhere.
type ServiceToken struct {
	Service   string
	Scopes    ScopeSet
	IssuedAt  time.Time
	ExpiresAt time.Time
	Value     string
}

// ValidFor reports whether the token stays valid past the given margin.
func (t *ServiceToken) ValidFor(margin time.Duration) bool {
	return time.Now().Add(margin).Before(t.ExpiresAt)
}

// Principal is the verified identity attached to an inbound request.
type Principal struct {
	Service string
	Scopes  ScopeSet
}

type serviceClaims struct {
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// TokenManager issues, caches, verifies, and rotates scoped service identity
// tokens. The signing secret is shared material distributed out-of-band; the
// cache is an explicitly injected collaborator, not a process-wide singleton.
type TokenManager struct {
	identities    *IdentityRegistry
	secret        []byte
	cache         TokenCache
	defaultTTL    time.Duration
	refreshMargin time.Duration
}

// TokenManagerOption customizes a TokenManager.
type TokenManagerOption func(*TokenManager)

// WithDefaultTTL sets the validity window used by GetOrIssue and Rotate.
func WithDefaultTTL(ttl time.Duration) TokenManagerOption {
	return func(m *TokenManager) {
		m.defaultTTL = ttl
	}
}

// WithRefreshMargin sets how close to expiry a cached token is replaced.
func WithRefreshMargin(margin time.Duration) TokenManagerOption {
	return func(m *TokenManager) {
		m.refreshMargin = margin
	}
}

// NewTokenManager creates a token manager over the identity registry, the
// shared signing secret, and an injected token cache.
func NewTokenManager(identities *IdentityRegistry, secret []byte, cache TokenCache, opts ...TokenManagerOption) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	if cache == nil {
		return nil, errors.New("token cache is required")
	}

	m := &TokenManager{
		identities:    identities,
		secret:        secret,
		cache:         cache,
		defaultTTL:    15 * time.Minute,
		refreshMargin: 1 * time.Minute,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// IssueToken issues a signed token for the service restricted to the
// requested scopes. The requested scopes must be a subset of the identity's
// allowed scopes.
func (m *TokenManager) IssueToken(ctx context.Context, serviceName string, scopes ScopeSet, ttl time.Duration) (*ServiceToken, error) {
	identity, err := m.identities.Lookup(serviceName)
	if err != nil {
		return nil, err
	}

	if !scopes.SubsetOf(identity.AllowedScopes) {
		return nil, errors.Wrapf(ErrScopeNotAllowed, "service %s requested %v", serviceName, scopes.Strings())
	}

	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := &serviceClaims{
		Scopes: scopes.Strings(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   serviceName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign service token")
	}

	return &ServiceToken{
		Service:   serviceName,
		Scopes:    scopes,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		Value:     signed,
	}, nil
}

// VerifyToken checks the signature and validity of a raw token string and
// returns the principal it encodes. Rotation does not retroactively
// invalidate a still-unexpired token; only expiry and the signature gate
// verification.
func (m *TokenManager) VerifyToken(ctx context.Context, raw string) (*Principal, error) {
	claims := &serviceClaims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, errors.Wrap(ErrInvalidSignature, err.Error())
		}
	}

	if _, err := m.identities.Lookup(claims.Subject); err != nil {
		return nil, err
	}

	scopes, err := ParseScopes(claims.Scopes)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}

	return &Principal{Service: claims.Subject, Scopes: scopes}, nil
}

// GetOrIssue returns the cached token for the service when it is still valid
// past the refresh margin, issuing and caching a fresh one otherwise. The
// fresh token carries the identity's full allowed scope set.
func (m *TokenManager) GetOrIssue(ctx context.Context, serviceName string) (*ServiceToken, error) {
	key := cacheKey(serviceName)

	cached, err := m.cache.Get(ctx, key)
	if err != nil {
		return nil, errors.Wrap(err, "token cache read failed")
	}
	if cached != nil && cached.ValidFor(m.refreshMargin) {
		return cached, nil
	}

	return m.issueAndCache(ctx, serviceName)
}

// Rotate issues a fresh token for the service and swaps the cache entry.
// Already-issued tokens stay verifiable until their own expiry; rotation
// affects future issuance only.
func (m *TokenManager) Rotate(ctx context.Context, serviceName string) (*ServiceToken, error) {
	return m.issueAndCache(ctx, serviceName)
}

// RotateAll rotates every registered service identity.
func (m *TokenManager) RotateAll(ctx context.Context) error {
	for _, name := range m.identities.Names() {
		if _, err := m.issueAndCache(ctx, name); err != nil {
			return errors.Wrapf(err, "failed to rotate token for %s", name)
		}
	}
	return nil
}

// Invalidate drops the cached token for a service so the next GetOrIssue
// issues a fresh one.
func (m *TokenManager) Invalidate(ctx context.Context, serviceName string) error {
	return m.cache.Delete(ctx, cacheKey(serviceName))
}

func (m *TokenManager) issueAndCache(ctx context.Context, serviceName string) (*ServiceToken, error) {
	identity, err := m.identities.Lookup(serviceName)
	if err != nil {
		return nil, err
	}

	token, err := m.IssueToken(ctx, serviceName, identity.AllowedScopes, m.defaultTTL)
	if err != nil {
		return nil, err
	}

	if err := m.cache.Set(ctx, cacheKey(serviceName), token); err != nil {
		return nil, errors.Wrap(err, "token cache write failed")
	}

	return token, nil
}

func cacheKey(serviceName string) string {
	return "service-token:" + serviceName
}
