package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/commercium/checkout-system/checkout-service/mocks"
	"github.com/commercium/checkout-system/shared/models"
	"github.com/commercium/checkout-system/shared/saga"
)

func TestResumeSaga_Execute(t *testing.T) {
	sagaID := models.GenerateUUID()

	tests := []struct {
		name          string
		command       *ResumeSagaCommand
		setupMocks    func(*mocks.MockSagaRunner)
		expectedError string
	}{
		{
			name:    "resumes the saga",
			command: &ResumeSagaCommand{SagaID: sagaID.String()},
			setupMocks: func(runner *mocks.MockSagaRunner) {
				runner.EXPECT().Resume(mock.Anything, sagaID).Return(nil).Once()
			},
		},
		{
			name:          "missing saga ID",
			command:       &ResumeSagaCommand{},
			expectedError: "saga ID is required",
		},
		{
			name:          "malformed saga ID",
			command:       &ResumeSagaCommand{SagaID: "nope"},
			expectedError: "invalid saga ID",
		},
		{
			name:    "unknown saga maps to not found",
			command: &ResumeSagaCommand{SagaID: sagaID.String()},
			setupMocks: func(runner *mocks.MockSagaRunner) {
				runner.EXPECT().Resume(mock.Anything, sagaID).Return(saga.ErrSagaNotFound).Once()
			},
			expectedError: ErrSagaNotFound.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := mocks.NewMockSagaRunner(t)
			if tt.setupMocks != nil {
				tt.setupMocks(runner)
			}

			uc := NewResumeSaga(runner)
			err := uc.Execute(context.Background(), tt.command)

			if tt.expectedError != "" {
				assert.ErrorContains(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}
