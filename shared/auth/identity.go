package auth

import (
	"github.com/pkg/errors"
)

var (
	ErrUnknownService  = errors.New("unknown service")
	ErrScopeNotAllowed = errors.New("scope not allowed for service")
)

// ServiceIdentity describes a service known to the trust layer and the
// scopes it may be granted. Identities are configured at startup, never
// created at runtime.
type ServiceIdentity struct {
	Name          string
	AllowedScopes ScopeSet
}

// IdentityRegistry is the closed table of service identities. It is built
// once during process start and is read-only afterwards.
type IdentityRegistry struct {
	identities map[string]*ServiceIdentity
}

// NewIdentityRegistry builds a registry from the configured identities,
// validating every allowed scope against the closed set of known scopes.
func NewIdentityRegistry(identities []*ServiceIdentity, knownScopes ScopeSet) (*IdentityRegistry, error) {
	reg := &IdentityRegistry{identities: make(map[string]*ServiceIdentity, len(identities))}

	for _, identity := range identities {
		if identity.Name == "" {
			return nil, errors.New("service identity requires a name")
		}
		if _, exists := reg.identities[identity.Name]; exists {
			return nil, errors.Errorf("duplicate service identity %q", identity.Name)
		}
		for _, scope := range identity.AllowedScopes {
			if !scopeKnown(scope, knownScopes) {
				return nil, errors.Errorf("service %q declares unknown scope %q", identity.Name, scope)
			}
		}
		reg.identities[identity.Name] = identity
	}

	return reg, nil
}

// scopeKnown accepts an exact known scope, or a wildcard over a resource
// that at least one known scope lives on.
func scopeKnown(scope Scope, known ScopeSet) bool {
	for _, k := range known {
		if scope.IsWildcard() && k.Resource == scope.Resource {
			return true
		}
		if k == scope {
			return true
		}
	}
	return false
}

// Lookup returns the identity for a service name.
func (r *IdentityRegistry) Lookup(serviceName string) (*ServiceIdentity, error) {
	identity, ok := r.identities[serviceName]
	if !ok {
		return nil, errors.Wrap(ErrUnknownService, serviceName)
	}
	return identity, nil
}

// Names returns every registered service name.
func (r *IdentityRegistry) Names() []string {
	names := make([]string, 0, len(r.identities))
	for name := range r.identities {
		names = append(names, name)
	}
	return names
}
