package saga

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/commercium/checkout-system/shared/models"
)

// Store persists saga instances together with their step records. Lookups
// for absent instances return (nil, nil). Update applies only when the
// stored version matches the version the writer read; a mismatch returns
// ErrVersionConflict and the write is discarded.
type Store interface {
	Create(ctx context.Context, instance *SagaInstance) error
	Get(ctx context.Context, id models.ID) (*SagaInstance, error)
	FindByIdempotencyKey(ctx context.Context, sagaName, key string) (*SagaInstance, error)
	Update(ctx context.Context, instance *SagaInstance) error
	ListByStatus(ctx context.Context, status SagaStatus, limit int) ([]*SagaInstance, error)
}

// MemoryStore is the in-memory Store used by tests and local development. It
// enforces the same uniqueness and version semantics as the durable store.
type MemoryStore struct {
	mu        sync.RWMutex
	instances map[models.ID]*SagaInstance
	byKey     map[string]models.ID
}

// NewMemoryStore creates an empty in-memory saga store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		instances: make(map[models.ID]*SagaInstance),
		byKey:     make(map[string]models.ID),
	}
}

func (s *MemoryStore) Create(_ context.Context, instance *SagaInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dedupKey(instance.Name, instance.IdempotencyKey)
	if _, ok := s.byKey[key]; ok {
		return ErrDuplicateKey
	}
	if _, ok := s.instances[instance.ID]; ok {
		return ErrDuplicateKey
	}

	s.instances[instance.ID] = cloneInstance(instance)
	s.byKey[key] = instance.ID
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id models.ID) (*SagaInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	instance, ok := s.instances[id]
	if !ok {
		return nil, nil
	}
	return cloneInstance(instance), nil
}

func (s *MemoryStore) FindByIdempotencyKey(_ context.Context, sagaName, key string) (*SagaInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[dedupKey(sagaName, key)]
	if !ok {
		return nil, nil
	}
	return cloneInstance(s.instances[id]), nil
}

func (s *MemoryStore) Update(_ context.Context, instance *SagaInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.instances[instance.ID]
	if !ok {
		return ErrSagaNotFound
	}
	if stored.Version.Value != instance.Version.Previous() {
		return ErrVersionConflict
	}

	s.instances[instance.ID] = cloneInstance(instance)
	return nil
}

func (s *MemoryStore) ListByStatus(_ context.Context, status SagaStatus, limit int) ([]*SagaInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*SagaInstance
	for _, instance := range s.instances {
		if instance.Status != status {
			continue
		}
		out = append(out, cloneInstance(instance))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func dedupKey(sagaName, idempotencyKey string) string {
	return sagaName + "/" + idempotencyKey
}

func cloneInstance(instance *SagaInstance) *SagaInstance {
	clone := &SagaInstance{
		ID:             instance.ID,
		Name:           instance.Name,
		IdempotencyKey: instance.IdempotencyKey,
		Status:         instance.Status,
		Input:          cloneRaw(instance.Input),
		Steps:          make([]*StepRecord, len(instance.Steps)),
		Timestamps:     instance.Timestamps,
		Version:        instance.Version,
	}

	for i, step := range instance.Steps {
		copied := *step
		copied.Result = cloneRaw(step.Result)
		clone.Steps[i] = &copied
	}

	return clone
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
