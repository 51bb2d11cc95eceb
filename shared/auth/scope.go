package auth

import (
	"strings"

	"github.com/pkg/errors"
)

// WildcardAction grants every action on a scope's resource.
const WildcardAction = "*"

// Scope is a named permission granted to a service identity, modeled as a
// (resource, action) pair. The wire form is "resource:action"; an action of
// "*" satisfies any action on the same resource.
type Scope struct {
	Resource string
	Action   string
}

// ParseScope parses the "resource:action" wire form.
func ParseScope(raw string) (Scope, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Scope{}, errors.Errorf("malformed scope %q", raw)
	}
	return Scope{Resource: parts[0], Action: parts[1]}, nil
}

// MustParseScope parses a scope literal known at compile time.
func MustParseScope(raw string) Scope {
	s, err := ParseScope(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the wire form of the scope.
func (s Scope) String() string {
	return s.Resource + ":" + s.Action
}

// IsWildcard reports whether the scope covers all actions on its resource.
func (s Scope) IsWildcard() bool {
	return s.Action == WildcardAction
}

// Satisfies reports whether this granted scope covers the required one.
// Exact match, or wildcard match on the same resource.
func (s Scope) Satisfies(required Scope) bool {
	if s.Resource != required.Resource {
		return false
	}
	return s.IsWildcard() || s.Action == required.Action
}

// ScopeSet is an ordered collection of scopes.
type ScopeSet []Scope

// ParseScopes parses a list of wire-form scopes.
func ParseScopes(raw []string) (ScopeSet, error) {
	set := make(ScopeSet, 0, len(raw))
	for _, r := range raw {
		s, err := ParseScope(r)
		if err != nil {
			return nil, err
		}
		set = append(set, s)
	}
	return set, nil
}

// Satisfies reports whether any scope in the set covers the required one.
func (ss ScopeSet) Satisfies(required Scope) bool {
	for _, s := range ss {
		if s.Satisfies(required) {
			return true
		}
	}
	return false
}

// SubsetOf reports whether every scope in the set is covered by allowed.
func (ss ScopeSet) SubsetOf(allowed ScopeSet) bool {
	for _, s := range ss {
		if !allowed.Satisfies(s) {
			return false
		}
	}
	return true
}

// Strings returns the wire form of every scope in the set.
func (ss ScopeSet) Strings() []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.String()
	}
	return out
}
