package auth

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

// TokenCache is the shared cache the token manager keeps issued tokens in.
// Keys are namespaced per service. A Get for an absent key returns (nil, nil).
// Implementations must give readers either the previous or the new value
// during a concurrent Set, never a partial one.
type TokenCache interface {
	Get(ctx context.Context, key string) (*ServiceToken, error)
	Set(ctx context.Context, key string, token *ServiceToken) error
	Delete(ctx context.Context, key string) error
}

// MemoryTokenCache is the in-process TokenCache. Entries are whole
// *ServiceToken values swapped atomically, so a concurrent rotation never
// exposes a half-written entry to readers.
type MemoryTokenCache struct {
	entries *xsync.MapOf[string, *ServiceToken]
}

// NewMemoryTokenCache creates an empty in-process token cache.
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{entries: xsync.NewMapOf[string, *ServiceToken]()}
}

func (c *MemoryTokenCache) Get(_ context.Context, key string) (*ServiceToken, error) {
	token, ok := c.entries.Load(key)
	if !ok {
		return nil, nil
	}
	return token, nil
}

func (c *MemoryTokenCache) Set(_ context.Context, key string, token *ServiceToken) error {
	c.entries.Store(key, token)
	return nil
}

func (c *MemoryTokenCache) Delete(_ context.Context, key string) error {
	c.entries.Delete(key)
	return nil
}
