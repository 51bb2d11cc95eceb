package saga

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	instance := NewSagaInstance(twoStepDefinition(), json.RawMessage(`{"x":1}`), "key-1")
	require.NoError(t, store.Create(ctx, instance))

	loaded, err := store.Get(ctx, instance.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, instance.ID, loaded.ID)
	assert.Equal(t, SagaStatusPending, loaded.Status)
	assert.Len(t, loaded.Steps, 2)

	// Stored state is isolated from later mutations of the caller's copy.
	require.NoError(t, instance.Start())
	reloaded, err := store.Get(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, SagaStatusPending, reloaded.Status)
}

func TestMemoryStore_GetMissingReturnsNil(t *testing.T) {
	store := NewMemoryStore()

	loaded, err := store.Get(context.Background(), "550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryStore_DuplicateIdempotencyKey(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := NewSagaInstance(twoStepDefinition(), nil, "key-1")
	require.NoError(t, store.Create(ctx, first))

	second := NewSagaInstance(twoStepDefinition(), nil, "key-1")
	err := store.Create(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMemoryStore_FindByIdempotencyKey(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	instance := NewSagaInstance(twoStepDefinition(), nil, "key-1")
	require.NoError(t, store.Create(ctx, instance))

	found, err := store.FindByIdempotencyKey(ctx, "order", "key-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, instance.ID, found.ID)

	// The key is namespaced by saga name.
	missing, err := store.FindByIdempotencyKey(ctx, "other", "key-1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStore_Update_OptimisticLocking(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	instance := NewSagaInstance(twoStepDefinition(), nil, "key-1")
	require.NoError(t, store.Create(ctx, instance))

	// Two workers load the same version.
	first, err := store.Get(ctx, instance.ID)
	require.NoError(t, err)
	second, err := store.Get(ctx, instance.ID)
	require.NoError(t, err)

	require.NoError(t, first.Start())
	require.NoError(t, store.Update(ctx, first))

	// The slower worker must lose, not overwrite.
	require.NoError(t, second.Start())
	err = store.Update(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionConflict)

	loaded, err := store.Get(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Version.Value, loaded.Version.Value)
}

func TestMemoryStore_Update_MissingInstance(t *testing.T) {
	store := NewMemoryStore()

	instance := NewSagaInstance(twoStepDefinition(), nil, "key-1")
	err := store.Update(context.Background(), instance)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSagaNotFound)
}

func TestMemoryStore_ListByStatus(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		instance := NewSagaInstance(twoStepDefinition(), nil, "key-"+string(rune('a'+i)))
		require.NoError(t, store.Create(ctx, instance))
	}

	pending, err := store.ListByStatus(ctx, SagaStatusPending, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	limited, err := store.ListByStatus(ctx, SagaStatusPending, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	running, err := store.ListByStatus(ctx, SagaStatusRunning, 0)
	require.NoError(t, err)
	assert.Empty(t, running)
}
