package saga

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/commercium/checkout-system/shared/models"
)

// Request carries everything a capability needs to perform or undo one step
// of a saga. IdempotencyKey is stable across retries of the same logical
// action, so downstream services can deduplicate.
type Request struct {
	SagaID         models.ID
	SagaName       string
	Step           string
	IdempotencyKey string

	// Input is the payload the saga was started with.
	Input json.RawMessage

	// Results holds the stored result of every step that already succeeded,
	// keyed by step name. When compensating, Result additionally carries the
	// forward result of the step being undone.
	Results map[string]json.RawMessage
	Result  json.RawMessage
}

// Capability is a named remote action the orchestrator can invoke. The runtime
// set of capabilities is fixed at startup. Implementations classify their
// failures with Transient or Permanent; unclassified errors are treated as
// permanent.
type Capability interface {
	Invoke(ctx context.Context, req Request) (json.RawMessage, error)
}

// CapabilityFunc adapts a plain function to the Capability interface.
type CapabilityFunc func(ctx context.Context, req Request) (json.RawMessage, error)

func (f CapabilityFunc) Invoke(ctx context.Context, req Request) (json.RawMessage, error) {
	return f(ctx, req)
}

// CapabilityRegistry maps capability names to implementations. It is built
// once during startup and read-only afterwards.
type CapabilityRegistry struct {
	capabilities map[string]Capability
}

// NewCapabilityRegistry creates an empty capability registry.
func NewCapabilityRegistry() *CapabilityRegistry {
	return &CapabilityRegistry{capabilities: make(map[string]Capability)}
}

// Register adds a named capability. Duplicate names are a wiring bug.
func (r *CapabilityRegistry) Register(name string, capability Capability) error {
	if name == "" {
		return errors.New("capability name is required")
	}
	if capability == nil {
		return errors.Errorf("capability %s is nil", name)
	}
	if _, ok := r.capabilities[name]; ok {
		return errors.Errorf("capability %s already registered", name)
	}

	r.capabilities[name] = capability
	return nil
}

// Resolve returns the capability registered under name.
func (r *CapabilityRegistry) Resolve(name string) (Capability, error) {
	capability, ok := r.capabilities[name]
	if !ok {
		return nil, errors.Errorf("capability %s not registered", name)
	}
	return capability, nil
}

// BackoffPolicy controls the delay between retries of a transient step
// failure. The delay grows geometrically and is capped at MaxInterval.
type BackoffPolicy struct {
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
}

// DefaultBackoff is applied to steps that do not set their own policy.
var DefaultBackoff = BackoffPolicy{
	InitialInterval: 100 * time.Millisecond,
	Multiplier:      2,
	MaxInterval:     5 * time.Second,
}

// Interval returns the delay before the given retry. attempt is the number of
// attempts already made, so the first retry (attempt 1) waits InitialInterval.
func (p BackoffPolicy) Interval(attempt int) time.Duration {
	interval := float64(p.InitialInterval)
	for i := 1; i < attempt; i++ {
		interval *= p.Multiplier
		if interval >= float64(p.MaxInterval) {
			return p.MaxInterval
		}
	}

	if interval > float64(p.MaxInterval) {
		return p.MaxInterval
	}
	return time.Duration(interval)
}

// StepDefinition describes one forward action of a saga and, optionally, the
// capability that undoes it. A step without a compensation is skipped during
// rollback.
type StepDefinition struct {
	Name        string
	Forward     string
	Compensate  string
	MaxAttempts int
	Timeout     time.Duration
	Backoff     BackoffPolicy
}

// Definition is an ordered sequence of steps registered under a saga name.
// Definitions are static configuration; per-request state lives in
// SagaInstance.
type Definition struct {
	Name  string
	Steps []StepDefinition
}

// Validate checks the definition is internally consistent and that every
// referenced capability is registered. Run at startup so a broken wiring
// fails the process, not a request.
func (d *Definition) Validate(capabilities *CapabilityRegistry) error {
	if d.Name == "" {
		return errors.New("saga definition name is required")
	}
	if len(d.Steps) == 0 {
		return errors.Errorf("saga %s has no steps", d.Name)
	}

	seen := make(map[string]struct{}, len(d.Steps))
	for i, step := range d.Steps {
		if step.Name == "" {
			return errors.Errorf("saga %s: step %d has no name", d.Name, i)
		}
		if _, ok := seen[step.Name]; ok {
			return errors.Errorf("saga %s: duplicate step name %s", d.Name, step.Name)
		}
		seen[step.Name] = struct{}{}

		if step.MaxAttempts < 1 {
			return errors.Errorf("saga %s: step %s needs at least one attempt", d.Name, step.Name)
		}
		if step.Timeout <= 0 {
			return errors.Errorf("saga %s: step %s needs a positive timeout", d.Name, step.Name)
		}

		if _, err := capabilities.Resolve(step.Forward); err != nil {
			return errors.Wrapf(err, "saga %s: step %s forward capability", d.Name, step.Name)
		}
		if step.Compensate != "" {
			if _, err := capabilities.Resolve(step.Compensate); err != nil {
				return errors.Wrapf(err, "saga %s: step %s compensation capability", d.Name, step.Name)
			}
		}
	}

	return nil
}

// step returns the definition of the step at the given ordinal.
func (d *Definition) step(ordinal int) (StepDefinition, error) {
	if ordinal < 0 || ordinal >= len(d.Steps) {
		return StepDefinition{}, errors.Errorf("saga %s: no step at ordinal %d", d.Name, ordinal)
	}
	return d.Steps[ordinal], nil
}
