package application

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/commercium/checkout-system/checkout-service/mocks"
	"github.com/commercium/checkout-system/shared/events"
	"github.com/commercium/checkout-system/shared/models"
)

func TestListSagaEvents_Execute(t *testing.T) {
	sagaID := models.GenerateUUID()

	recorded := []*events.Event{
		events.NewEvent(sagaID, events.SagaStartedEvent, map[string]string{"saga_name": "checkout"}),
		events.NewEvent(sagaID, events.SagaStepSucceededEvent, map[string]string{"step": "reserve_inventory"}),
	}

	tests := []struct {
		name          string
		query         *ListSagaEventsQuery
		setupMocks    func(*mocks.MockAuditTrail)
		expectedError string
		expectedCount int
	}{
		{
			name:  "returns the trail in stream order",
			query: &ListSagaEventsQuery{SagaID: sagaID.String()},
			setupMocks: func(trail *mocks.MockAuditTrail) {
				trail.EXPECT().GetEvents(mock.Anything, sagaID).Return(recorded, nil).Once()
			},
			expectedCount: 2,
		},
		{
			name:  "unknown saga has an empty trail",
			query: &ListSagaEventsQuery{SagaID: sagaID.String()},
			setupMocks: func(trail *mocks.MockAuditTrail) {
				trail.EXPECT().GetEvents(mock.Anything, sagaID).Return(nil, nil).Once()
			},
			expectedCount: 0,
		},
		{
			name:          "missing saga ID",
			query:         &ListSagaEventsQuery{},
			expectedError: "saga ID is required",
		},
		{
			name:          "malformed saga ID",
			query:         &ListSagaEventsQuery{SagaID: "not-a-uuid"},
			expectedError: "invalid saga ID",
		},
		{
			name:  "store failure",
			query: &ListSagaEventsQuery{SagaID: sagaID.String()},
			setupMocks: func(trail *mocks.MockAuditTrail) {
				trail.EXPECT().GetEvents(mock.Anything, sagaID).
					Return(nil, errors.New("connection reset")).Once()
			},
			expectedError: "failed to load saga events",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trail := mocks.NewMockAuditTrail(t)
			if tt.setupMocks != nil {
				tt.setupMocks(trail)
			}

			uc := NewListSagaEvents(trail)
			response, err := uc.Execute(context.Background(), tt.query)

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, response)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, sagaID.String(), response.SagaID)
			require.Len(t, response.Events, tt.expectedCount)
			for i, view := range response.Events {
				assert.Equal(t, recorded[i].ID.String(), view.ID)
				assert.Equal(t, recorded[i].EventType, view.EventType)
				assert.Equal(t, recorded[i].Timestamp, view.Timestamp)
			}
		})
	}
}
