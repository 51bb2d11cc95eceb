package application

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/commercium/checkout-system/checkout-service/domain"
	"github.com/commercium/checkout-system/checkout-service/mocks"
	"github.com/commercium/checkout-system/shared/models"
)

func validBeginCommand() *BeginCheckoutCommand {
	return &BeginCheckoutCommand{
		OrderID:    "order-1001",
		CustomerID: "550e8400-e29b-41d4-a716-446655440010",
		Items: []CartItemInput{
			{SKU: "SKU-1", Quantity: 2, UnitPrice: 1500},
			{SKU: "SKU-2", Quantity: 1, UnitPrice: 4000},
		},
		PaymentMethod:  "card",
		TotalAmount:    7000,
		Currency:       "USD",
		IdempotencyKey: "order-42",
	}
}

func TestBeginCheckout_Execute(t *testing.T) {
	sagaID := models.GenerateUUID()

	tests := []struct {
		name          string
		command       *BeginCheckoutCommand
		setupMocks    func(*mocks.MockSagaRunner)
		expectedError string
	}{
		{
			name:    "successful checkout start",
			command: validBeginCommand(),
			setupMocks: func(runner *mocks.MockSagaRunner) {
				runner.EXPECT().Begin(mock.Anything, domain.CheckoutSagaName,
					mock.AnythingOfType("json.RawMessage"), "order-42").
					Return(sagaID, nil).Once()
			},
		},
		{
			name: "missing idempotency key",
			command: func() *BeginCheckoutCommand {
				cmd := validBeginCommand()
				cmd.IdempotencyKey = ""
				return cmd
			}(),
			expectedError: "idempotency key is required",
		},
		{
			name: "missing order ID",
			command: func() *BeginCheckoutCommand {
				cmd := validBeginCommand()
				cmd.OrderID = ""
				return cmd
			}(),
			expectedError: "order ID is required",
		},
		{
			name: "invalid customer ID",
			command: func() *BeginCheckoutCommand {
				cmd := validBeginCommand()
				cmd.CustomerID = "not-a-uuid"
				return cmd
			}(),
			expectedError: "invalid customer ID",
		},
		{
			name: "total does not match cart",
			command: func() *BeginCheckoutCommand {
				cmd := validBeginCommand()
				cmd.TotalAmount = 9999
				return cmd
			}(),
			expectedError: "invalid checkout request",
		},
		{
			name: "empty cart",
			command: func() *BeginCheckoutCommand {
				cmd := validBeginCommand()
				cmd.Items = nil
				cmd.TotalAmount = 0
				return cmd
			}(),
			expectedError: "invalid checkout request",
		},
		{
			name:    "runner failure",
			command: validBeginCommand(),
			setupMocks: func(runner *mocks.MockSagaRunner) {
				runner.EXPECT().Begin(mock.Anything, domain.CheckoutSagaName,
					mock.AnythingOfType("json.RawMessage"), "order-42").
					Return(models.ID(""), errors.New("store unavailable")).Once()
			},
			expectedError: "store unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := mocks.NewMockSagaRunner(t)
			if tt.setupMocks != nil {
				tt.setupMocks(runner)
			}

			uc := NewBeginCheckout(runner)
			response, err := uc.Execute(context.Background(), tt.command)

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, response)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, sagaID.String(), response.SagaID)
		})
	}
}

func TestBeginCheckout_PassesValidatedInputToRunner(t *testing.T) {
	runner := mocks.NewMockSagaRunner(t)

	var captured json.RawMessage
	runner.EXPECT().Begin(mock.Anything, domain.CheckoutSagaName, mock.Anything, "order-42").
		Run(func(ctx context.Context, sagaName string, input json.RawMessage, idempotencyKey string) {
			captured = input
		}).
		Return(models.GenerateUUID(), nil).Once()

	uc := NewBeginCheckout(runner)
	_, err := uc.Execute(context.Background(), validBeginCommand())
	assert.NoError(t, err)

	var request domain.CheckoutRequest
	assert.NoError(t, json.Unmarshal(captured, &request))
	assert.Equal(t, "order-1001", request.OrderID)
	assert.Len(t, request.Items, 2)
	assert.Equal(t, int64(7000), request.Total.Amount)
	assert.Equal(t, "USD", request.Total.Currency)
}
