package application

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/commercium/checkout-system/checkout-service/domain"
	"github.com/commercium/checkout-system/shared/models"
	"github.com/commercium/checkout-system/shared/saga"
)

// CartItemInput is one cart line of a checkout command.
type CartItemInput struct {
	SKU       string `json:"sku"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// BeginCheckoutCommand represents the command to start a checkout
type BeginCheckoutCommand struct {
	OrderID        string          `json:"order_id"`
	CustomerID     string          `json:"customer_id"`
	Items          []CartItemInput `json:"items"`
	PaymentMethod  string          `json:"payment_method"`
	TotalAmount    int64           `json:"total_amount"`
	Currency       string          `json:"currency"`
	IdempotencyKey string          `json:"idempotency_key"`
}

// BeginCheckoutResponse represents the response after starting a checkout
type BeginCheckoutResponse struct {
	SagaID string `json:"saga_id"`
}

// BeginCheckout use case
type BeginCheckout struct {
	runner SagaRunner
}

// NewBeginCheckout creates a new BeginCheckout use case
func NewBeginCheckout(runner SagaRunner) *BeginCheckout {
	return &BeginCheckout{runner: runner}
}

// Execute validates the command and starts (or re-joins) the checkout saga.
// Repeating a command with the same idempotency key returns the saga the
// first submission created.
func (uc *BeginCheckout) Execute(ctx context.Context, cmd *BeginCheckoutCommand) (*BeginCheckoutResponse, error) {
	if cmd.IdempotencyKey == "" {
		return nil, errors.New("idempotency key is required")
	}

	customerID, err := models.NewID(cmd.CustomerID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid customer ID")
	}

	items := make([]domain.CartItem, len(cmd.Items))
	for i, item := range cmd.Items {
		items[i] = domain.CartItem{
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: models.NewMoney(item.UnitPrice, cmd.Currency),
		}
	}

	request := &domain.CheckoutRequest{
		OrderID:       cmd.OrderID,
		CustomerID:    customerID,
		Items:         items,
		PaymentMethod: cmd.PaymentMethod,
		Total:         models.NewMoney(cmd.TotalAmount, cmd.Currency),
	}

	if err := request.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid checkout request")
	}

	input, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode checkout request")
	}

	sagaID, err := uc.runner.Begin(ctx, domain.CheckoutSagaName, input, cmd.IdempotencyKey)
	if err != nil {
		if errors.Is(err, saga.ErrUnknownDefinition) {
			return nil, errors.Wrap(err, "checkout saga not configured")
		}
		return nil, err
	}

	return &BeginCheckoutResponse{SagaID: sagaID.String()}, nil
}
