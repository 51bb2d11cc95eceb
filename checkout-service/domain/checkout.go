// Package domain holds the checkout vocabulary: the request a customer
// submits, the payloads exchanged with the downstream inventory, payment,
// order, and notification services, and the names of the saga steps that tie
// them together.
package domain

import (
	"github.com/pkg/errors"

	"github.com/commercium/checkout-system/shared/models"
)

// CheckoutSagaName identifies the checkout flow in the saga store.
const CheckoutSagaName = "checkout"

// Step names of the checkout saga, in execution order.
const (
	StepReserveInventory = "reserve_inventory"
	StepChargePayment    = "charge_payment"
	StepFinalizeOrder    = "finalize_order"
	StepNotifyCustomer   = "notify_customer"
)

// Capability names registered with the orchestrator.
const (
	CapabilityInventoryReserve = "inventory.reserve"
	CapabilityInventoryRelease = "inventory.release"
	CapabilityPaymentCharge    = "payment.charge"
	CapabilityPaymentRefund    = "payment.refund"
	CapabilityOrderFinalize    = "order.finalize"
	CapabilityOrderCancel      = "order.cancel"
	CapabilityCustomerNotify   = "customer.notify"
)

// CartItem is one line of the checkout cart.
type CartItem struct {
	SKU       string       `json:"sku"`
	Quantity  int64        `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
}

// Total returns the line total.
func (i CartItem) Total() models.Money {
	return i.UnitPrice.Times(i.Quantity)
}

// CheckoutRequest is the input of the checkout saga. It travels with the
// saga instance and is handed to every step. The order ID is minted by the
// caller and referenced by every downstream call.
type CheckoutRequest struct {
	OrderID       string       `json:"order_id"`
	CustomerID    models.ID    `json:"customer_id"`
	Items         []CartItem   `json:"items"`
	PaymentMethod string       `json:"payment_method"`
	Total         models.Money `json:"total"`
}

// Validate checks the request is complete and internally consistent before a
// saga is started for it.
func (r *CheckoutRequest) Validate() error {
	if r.OrderID == "" {
		return errors.New("order ID is required")
	}
	if r.CustomerID.IsEmpty() {
		return errors.New("customer ID is required")
	}
	if len(r.Items) == 0 {
		return errors.New("cart is empty")
	}
	if r.PaymentMethod == "" {
		return errors.New("payment method is required")
	}

	sum := models.NewMoney(0, r.Total.Currency)
	for i, item := range r.Items {
		if item.SKU == "" {
			return errors.Errorf("item %d has no SKU", i)
		}
		if item.Quantity <= 0 {
			return errors.Errorf("item %d has a non-positive quantity", i)
		}
		if !item.UnitPrice.IsPositive() {
			return errors.Errorf("item %d has a non-positive unit price", i)
		}

		var err error
		sum, err = sum.Add(item.Total())
		if err != nil {
			return errors.Wrapf(err, "item %d", i)
		}
	}

	if sum != r.Total {
		return errors.Errorf("cart total %d %s does not match declared total %d %s",
			sum.Amount, sum.Currency, r.Total.Amount, r.Total.Currency)
	}

	return nil
}

// ReserveInventoryRequest is sent to the inventory service.
type ReserveInventoryRequest struct {
	IdempotencyKey string     `json:"idempotency_key"`
	OrderID        string     `json:"order_id"`
	Items          []CartItem `json:"items"`
}

// ReserveInventoryResult is the stored forward result of the reservation
// step, and the payload its release needs.
type ReserveInventoryResult struct {
	ReservationID string `json:"reservation_id"`
}

// ReleaseInventoryRequest undoes a reservation.
type ReleaseInventoryRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	ReservationID  string `json:"reservation_id"`
}

// ChargePaymentRequest is sent to the payment service.
type ChargePaymentRequest struct {
	IdempotencyKey string       `json:"idempotency_key"`
	OrderID        string       `json:"order_id"`
	CustomerID     models.ID    `json:"customer_id"`
	Amount         models.Money `json:"amount"`
	PaymentMethod  string       `json:"payment_method"`
}

// ChargePaymentResult is the stored forward result of the charge step.
type ChargePaymentResult struct {
	ChargeID string `json:"charge_id"`
}

// RefundPaymentRequest undoes a charge.
type RefundPaymentRequest struct {
	IdempotencyKey string       `json:"idempotency_key"`
	ChargeID       string       `json:"charge_id"`
	Amount         models.Money `json:"amount"`
}

// FinalizeOrderRequest is sent to the order service.
type FinalizeOrderRequest struct {
	IdempotencyKey string     `json:"idempotency_key"`
	OrderID        string     `json:"order_id"`
	CustomerID     models.ID  `json:"customer_id"`
	Items          []CartItem `json:"items"`
	ReservationID  string     `json:"reservation_id"`
	ChargeID       string     `json:"charge_id"`
}

// FinalizeOrderResult is the stored forward result of the finalize step. The
// order service echoes the order ID it finalized.
type FinalizeOrderResult struct {
	OrderID string `json:"order_id"`
}

// CancelOrderRequest undoes a finalized order.
type CancelOrderRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	OrderID        string `json:"order_id"`
}

// NotifyCustomerRequest is sent to the notification service. Notifications
// have no compensating action.
type NotifyCustomerRequest struct {
	IdempotencyKey string    `json:"idempotency_key"`
	CustomerID     models.ID `json:"customer_id"`
	OrderID        string    `json:"order_id"`
}
