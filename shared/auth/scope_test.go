package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		expected      Scope
		expectedError bool
	}{
		{name: "plain scope", raw: "inventory:reserve", expected: Scope{Resource: "inventory", Action: "reserve"}},
		{name: "wildcard scope", raw: "payments:*", expected: Scope{Resource: "payments", Action: "*"}},
		{name: "action with colon", raw: "orders:admin:cancel", expected: Scope{Resource: "orders", Action: "admin:cancel"}},
		{name: "missing action", raw: "inventory:", expectedError: true},
		{name: "missing resource", raw: ":reserve", expectedError: true},
		{name: "no separator", raw: "inventory", expectedError: true},
		{name: "empty", raw: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseScope(tt.raw)
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s)
			assert.Equal(t, tt.raw, s.String())
		})
	}
}

func TestScope_Satisfies(t *testing.T) {
	tests := []struct {
		name      string
		granted   string
		required  string
		satisfied bool
	}{
		{name: "exact match", granted: "inventory:reserve", required: "inventory:reserve", satisfied: true},
		{name: "wildcard covers action", granted: "inventory:*", required: "inventory:release", satisfied: true},
		{name: "wildcard does not cross resources", granted: "inventory:*", required: "payments:charge", satisfied: false},
		{name: "different action", granted: "inventory:reserve", required: "inventory:release", satisfied: false},
		{name: "narrow grant does not satisfy wildcard requirement", granted: "inventory:reserve", required: "inventory:*", satisfied: false},
		{name: "wildcard satisfies wildcard on same resource", granted: "inventory:*", required: "inventory:*", satisfied: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			granted := MustParseScope(tt.granted)
			required := MustParseScope(tt.required)
			assert.Equal(t, tt.satisfied, granted.Satisfies(required))
		})
	}
}

func TestScopeSet_SubsetOf(t *testing.T) {
	allowed, err := ParseScopes([]string{"inventory:*", "payments:charge"})
	require.NoError(t, err)

	subset, err := ParseScopes([]string{"inventory:reserve", "inventory:release"})
	require.NoError(t, err)
	assert.True(t, subset.SubsetOf(allowed))

	tooWide, err := ParseScopes([]string{"payments:refund"})
	require.NoError(t, err)
	assert.False(t, tooWide.SubsetOf(allowed))
}

func TestNewIdentityRegistry(t *testing.T) {
	known, err := ParseScopes([]string{"inventory:reserve", "inventory:release", "payments:charge"})
	require.NoError(t, err)

	t.Run("valid identities", func(t *testing.T) {
		reg, err := NewIdentityRegistry([]*ServiceIdentity{
			{Name: "checkout", AllowedScopes: ScopeSet{MustParseScope("inventory:*"), MustParseScope("payments:charge")}},
			{Name: "inventory", AllowedScopes: ScopeSet{MustParseScope("inventory:reserve")}},
		}, known)
		require.NoError(t, err)

		identity, err := reg.Lookup("checkout")
		require.NoError(t, err)
		assert.Equal(t, "checkout", identity.Name)

		_, err = reg.Lookup("stranger")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownService)
	})

	t.Run("unknown scope rejected at startup", func(t *testing.T) {
		_, err := NewIdentityRegistry([]*ServiceIdentity{
			{Name: "rogue", AllowedScopes: ScopeSet{MustParseScope("shipping:dispatch")}},
		}, known)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown scope")
	})

	t.Run("duplicate identity rejected", func(t *testing.T) {
		_, err := NewIdentityRegistry([]*ServiceIdentity{
			{Name: "checkout"},
			{Name: "checkout"},
		}, known)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})
}
