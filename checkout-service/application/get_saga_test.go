package application

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/mock"

	"github.com/commercium/checkout-system/checkout-service/mocks"
	"github.com/commercium/checkout-system/shared/models"
	"github.com/commercium/checkout-system/shared/saga"
)

func storedInstance(t *testing.T) *saga.SagaInstance {
	t.Helper()

	def := &saga.Definition{
		Name: "checkout",
		Steps: []saga.StepDefinition{
			{Name: "reserve_inventory", Forward: "inventory.reserve", MaxAttempts: 1, Timeout: 1},
			{Name: "charge_payment", Forward: "payment.charge", MaxAttempts: 1, Timeout: 1},
		},
	}

	instance := saga.NewSagaInstance(def, json.RawMessage(`{"payment_method":"card"}`), "order-42")
	require.NoError(t, instance.Start())
	require.NoError(t, instance.MarkStepSucceeded(0, json.RawMessage(`{"reservation_id":"res-1"}`), 1))
	return instance
}

func TestGetSaga_Execute(t *testing.T) {
	instance := storedInstance(t)

	tests := []struct {
		name          string
		query         *GetSagaQuery
		setupMocks    func(*mocks.MockSagaStore)
		expectedError error
		check         func(*testing.T, *SagaView)
	}{
		{
			name:  "returns saga with step records",
			query: &GetSagaQuery{SagaID: instance.ID.String()},
			setupMocks: func(store *mocks.MockSagaStore) {
				store.EXPECT().Get(mock.Anything, instance.ID).Return(instance, nil).Once()
			},
			check: func(t *testing.T, view *SagaView) {
				assert.Equal(t, instance.ID.String(), view.SagaID)
				assert.Equal(t, "running", view.Status)
				assert.Equal(t, "order-42", view.IdempotencyKey)
				require.Len(t, view.Steps, 2)
				assert.Equal(t, "succeeded", view.Steps[0].Status)
				assert.Equal(t, 1, view.Steps[0].AttemptCount)
				assert.JSONEq(t, `{"reservation_id":"res-1"}`, string(view.Steps[0].Result))
				assert.Equal(t, "pending", view.Steps[1].Status)
			},
		},
		{
			name:  "unknown saga",
			query: &GetSagaQuery{SagaID: "550e8400-e29b-41d4-a716-446655440099"},
			setupMocks: func(store *mocks.MockSagaStore) {
				store.EXPECT().Get(mock.Anything, models.ID("550e8400-e29b-41d4-a716-446655440099")).
					Return(nil, nil).Once()
			},
			expectedError: ErrSagaNotFound,
		},
		{
			name:          "missing saga ID",
			query:         &GetSagaQuery{},
			expectedError: errors.New("saga ID is required"),
		},
		{
			name:          "malformed saga ID",
			query:         &GetSagaQuery{SagaID: "nope"},
			expectedError: errors.New("invalid saga ID"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMockSagaStore(t)
			if tt.setupMocks != nil {
				tt.setupMocks(store)
			}

			uc := NewGetSaga(store)
			view, err := uc.Execute(context.Background(), tt.query)

			if tt.expectedError != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Nil(t, view)
				return
			}

			require.NoError(t, err)
			tt.check(t, view)
		})
	}
}

func TestListSagas_Execute(t *testing.T) {
	instance := storedInstance(t)

	t.Run("lists sagas in a status", func(t *testing.T) {
		store := mocks.NewMockSagaStore(t)
		store.EXPECT().ListByStatus(mock.Anything, saga.SagaStatusRunning, 10).
			Return([]*saga.SagaInstance{instance}, nil).Once()

		uc := NewListSagas(store)
		response, err := uc.Execute(context.Background(), &ListSagasQuery{Status: "running", Limit: 10})

		require.NoError(t, err)
		require.Len(t, response.Sagas, 1)
		assert.Equal(t, instance.ID.String(), response.Sagas[0].SagaID)
	})

	t.Run("defaults the limit", func(t *testing.T) {
		store := mocks.NewMockSagaStore(t)
		store.EXPECT().ListByStatus(mock.Anything, saga.SagaStatusCompensationFailed, defaultListLimit).
			Return(nil, nil).Once()

		uc := NewListSagas(store)
		response, err := uc.Execute(context.Background(), &ListSagasQuery{Status: "compensation_failed"})

		require.NoError(t, err)
		assert.Empty(t, response.Sagas)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		store := mocks.NewMockSagaStore(t)

		uc := NewListSagas(store)
		_, err := uc.Execute(context.Background(), &ListSagasQuery{Status: "bogus"})

		assert.ErrorContains(t, err, "unknown saga status")
	})
}
