package saga

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffPolicy_Interval(t *testing.T) {
	policy := BackoffPolicy{
		InitialInterval: 100 * time.Millisecond,
		Multiplier:      2,
		MaxInterval:     time.Second,
	}

	tests := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{name: "first retry", attempt: 1, expected: 100 * time.Millisecond},
		{name: "second retry doubles", attempt: 2, expected: 200 * time.Millisecond},
		{name: "third retry doubles again", attempt: 3, expected: 400 * time.Millisecond},
		{name: "capped at max", attempt: 10, expected: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, policy.Interval(tt.attempt))
		})
	}
}

func TestDefinition_Validate(t *testing.T) {
	noop := CapabilityFunc(func(_ context.Context, _ Request) (json.RawMessage, error) {
		return nil, nil
	})

	caps := NewCapabilityRegistry()
	require.NoError(t, caps.Register("forward", noop))
	require.NoError(t, caps.Register("undo", noop))

	valid := func() *Definition {
		return &Definition{
			Name: "ok",
			Steps: []StepDefinition{
				{Name: "one", Forward: "forward", Compensate: "undo", MaxAttempts: 3, Timeout: time.Second},
			},
		}
	}

	tests := []struct {
		name          string
		mutate        func(d *Definition)
		expectedError string
	}{
		{
			name:   "valid definition",
			mutate: func(d *Definition) {},
		},
		{
			name:          "missing name",
			mutate:        func(d *Definition) { d.Name = "" },
			expectedError: "name is required",
		},
		{
			name:          "no steps",
			mutate:        func(d *Definition) { d.Steps = nil },
			expectedError: "has no steps",
		},
		{
			name:          "unnamed step",
			mutate:        func(d *Definition) { d.Steps[0].Name = "" },
			expectedError: "has no name",
		},
		{
			name: "duplicate step names",
			mutate: func(d *Definition) {
				d.Steps = append(d.Steps, d.Steps[0])
			},
			expectedError: "duplicate step name",
		},
		{
			name:          "zero attempts",
			mutate:        func(d *Definition) { d.Steps[0].MaxAttempts = 0 },
			expectedError: "at least one attempt",
		},
		{
			name:          "missing timeout",
			mutate:        func(d *Definition) { d.Steps[0].Timeout = 0 },
			expectedError: "positive timeout",
		},
		{
			name:          "unregistered forward capability",
			mutate:        func(d *Definition) { d.Steps[0].Forward = "missing" },
			expectedError: "not registered",
		},
		{
			name:          "unregistered compensation capability",
			mutate:        func(d *Definition) { d.Steps[0].Compensate = "missing" },
			expectedError: "not registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := valid()
			tt.mutate(def)
			err := def.Validate(caps)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCapabilityRegistry(t *testing.T) {
	noop := CapabilityFunc(func(_ context.Context, _ Request) (json.RawMessage, error) {
		return nil, nil
	})

	registry := NewCapabilityRegistry()
	require.NoError(t, registry.Register("a", noop))

	t.Run("duplicate registration fails", func(t *testing.T) {
		err := registry.Register("a", noop)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("empty name fails", func(t *testing.T) {
		assert.Error(t, registry.Register("", noop))
	})

	t.Run("nil capability fails", func(t *testing.T) {
		assert.Error(t, registry.Register("b", nil))
	})

	t.Run("resolve registered", func(t *testing.T) {
		capability, err := registry.Resolve("a")
		require.NoError(t, err)
		assert.NotNil(t, capability)
	})

	t.Run("resolve missing", func(t *testing.T) {
		_, err := registry.Resolve("missing")
		require.Error(t, err)
	})
}

func TestErrorClassification(t *testing.T) {
	base := assert.AnError

	assert.True(t, IsTransient(Transient(base)))
	assert.False(t, IsPermanent(Transient(base)))
	assert.True(t, IsPermanent(Permanent(base)))
	assert.False(t, IsTransient(Permanent(base)))

	// Unclassified errors earn no retry.
	assert.False(t, IsTransient(base))

	assert.Nil(t, Transient(nil))
	assert.Nil(t, Permanent(nil))
}
