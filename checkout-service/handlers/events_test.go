package handlers

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/commercium/checkout-system/checkout-service/application"
	"github.com/commercium/checkout-system/checkout-service/mocks"
	"github.com/commercium/checkout-system/shared/events"
	"github.com/commercium/checkout-system/shared/models"
	"github.com/commercium/checkout-system/shared/saga"
)

func TestCheckoutEventHandlers_Handle(t *testing.T) {
	sagaID := models.GenerateUUID()

	resumeEvent := func(data interface{}) *events.Event {
		return events.NewEvent(sagaID, events.SagaResumeRequestedEvent, data)
	}

	tests := []struct {
		name          string
		event         *events.Event
		setupMocks    func(*mocks.MockSagaRunner)
		expectedError string
	}{
		{
			name:  "resumes the referenced saga",
			event: resumeEvent(map[string]interface{}{"saga_id": sagaID.String()}),
			setupMocks: func(runner *mocks.MockSagaRunner) {
				runner.EXPECT().Resume(mock.Anything, sagaID).Return(nil).Once()
			},
		},
		{
			name:  "unknown saga is dropped without error",
			event: resumeEvent(map[string]interface{}{"saga_id": sagaID.String()}),
			setupMocks: func(runner *mocks.MockSagaRunner) {
				runner.EXPECT().Resume(mock.Anything, sagaID).Return(saga.ErrSagaNotFound).Once()
			},
		},
		{
			name:          "missing saga_id is an error",
			event:         resumeEvent(map[string]interface{}{}),
			expectedError: "saga_id is required",
		},
		{
			name:          "malformed payload is an error",
			event:         resumeEvent("not a map"),
			expectedError: "malformed resume request payload",
		},
		{
			name:  "unrelated event types are ignored",
			event: events.NewEvent(sagaID, events.CheckoutCompletedEvent, map[string]interface{}{}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := mocks.NewMockSagaRunner(t)
			if tt.setupMocks != nil {
				tt.setupMocks(runner)
			}

			h := NewCheckoutEventHandlers(application.NewResumeSaga(runner), zerolog.Nop())
			err := h.Handle(context.Background(), tt.event)

			if tt.expectedError != "" {
				assert.ErrorContains(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckoutEventHandlers_HandlerID(t *testing.T) {
	h := NewCheckoutEventHandlers(nil, zerolog.Nop())
	assert.Equal(t, "checkout-service-event-handler", h.HandlerID())
}
