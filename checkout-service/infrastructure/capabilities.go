package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/commercium/checkout-system/checkout-service/domain"
	"github.com/commercium/checkout-system/shared/auth"
	"github.com/commercium/checkout-system/shared/saga"
)

// DownstreamServices holds the base URLs of the services the checkout saga
// calls.
type DownstreamServices struct {
	InventoryURL    string
	PaymentURL      string
	OrderURL        string
	NotificationURL string
}

// StepTuning carries the retry settings applied to every checkout step.
type StepTuning struct {
	MaxAttempts int
	Timeout     time.Duration
	Backoff     saga.BackoffPolicy
}

// checkoutCapabilities invokes the downstream services over authenticated
// HTTP. Each invocation carries the step's idempotency key so downstreams can
// deduplicate redelivered work.
type checkoutCapabilities struct {
	client   *auth.Client
	services DownstreamServices
}

// RegisterCheckoutCapabilities registers the forward and compensating actions
// of the checkout saga.
func RegisterCheckoutCapabilities(registry *saga.CapabilityRegistry, client *auth.Client, services DownstreamServices) error {
	c := &checkoutCapabilities{client: client, services: services}

	for name, capability := range map[string]saga.Capability{
		domain.CapabilityInventoryReserve: saga.CapabilityFunc(c.reserveInventory),
		domain.CapabilityInventoryRelease: saga.CapabilityFunc(c.releaseInventory),
		domain.CapabilityPaymentCharge:    saga.CapabilityFunc(c.chargePayment),
		domain.CapabilityPaymentRefund:    saga.CapabilityFunc(c.refundPayment),
		domain.CapabilityOrderFinalize:    saga.CapabilityFunc(c.finalizeOrder),
		domain.CapabilityOrderCancel:      saga.CapabilityFunc(c.cancelOrder),
		domain.CapabilityCustomerNotify:   saga.CapabilityFunc(c.notifyCustomer),
	} {
		if err := registry.Register(name, capability); err != nil {
			return err
		}
	}

	return nil
}

// NewCheckoutDefinition builds the checkout saga definition. Notification has
// no compensation and is skipped during rollback.
func NewCheckoutDefinition(tuning StepTuning) *saga.Definition {
	step := func(name, forward, compensate string) saga.StepDefinition {
		return saga.StepDefinition{
			Name:        name,
			Forward:     forward,
			Compensate:  compensate,
			MaxAttempts: tuning.MaxAttempts,
			Timeout:     tuning.Timeout,
			Backoff:     tuning.Backoff,
		}
	}

	return &saga.Definition{
		Name: domain.CheckoutSagaName,
		Steps: []saga.StepDefinition{
			step(domain.StepReserveInventory, domain.CapabilityInventoryReserve, domain.CapabilityInventoryRelease),
			step(domain.StepChargePayment, domain.CapabilityPaymentCharge, domain.CapabilityPaymentRefund),
			step(domain.StepFinalizeOrder, domain.CapabilityOrderFinalize, domain.CapabilityOrderCancel),
			step(domain.StepNotifyCustomer, domain.CapabilityCustomerNotify, ""),
		},
	}
}

func (c *checkoutCapabilities) reserveInventory(ctx context.Context, req saga.Request) (json.RawMessage, error) {
	input, err := checkoutInput(req)
	if err != nil {
		return nil, err
	}

	payload := domain.ReserveInventoryRequest{
		IdempotencyKey: req.IdempotencyKey,
		OrderID:        input.OrderID,
		Items:          input.Items,
	}

	var result domain.ReserveInventoryResult
	if err := c.client.PostJSON(ctx, c.services.InventoryURL+"/api/v1/reservations", payload, &result); err != nil {
		return nil, classify(err)
	}
	if result.ReservationID == "" {
		return nil, saga.Permanent(errors.New("inventory service returned no reservation ID"))
	}

	return json.Marshal(result)
}

func (c *checkoutCapabilities) releaseInventory(ctx context.Context, req saga.Request) (json.RawMessage, error) {
	var reserved domain.ReserveInventoryResult
	if err := json.Unmarshal(req.Result, &reserved); err != nil {
		return nil, saga.Permanent(errors.Wrap(err, "stored reservation result is unreadable"))
	}

	payload := domain.ReleaseInventoryRequest{
		IdempotencyKey: req.IdempotencyKey,
		ReservationID:  reserved.ReservationID,
	}

	if err := c.client.PostJSON(ctx, c.services.InventoryURL+"/api/v1/reservations/release", payload, nil); err != nil {
		return nil, classify(err)
	}
	return nil, nil
}

func (c *checkoutCapabilities) chargePayment(ctx context.Context, req saga.Request) (json.RawMessage, error) {
	input, err := checkoutInput(req)
	if err != nil {
		return nil, err
	}

	payload := domain.ChargePaymentRequest{
		IdempotencyKey: req.IdempotencyKey,
		OrderID:        input.OrderID,
		CustomerID:     input.CustomerID,
		Amount:         input.Total,
		PaymentMethod:  input.PaymentMethod,
	}

	var result domain.ChargePaymentResult
	if err := c.client.PostJSON(ctx, c.services.PaymentURL+"/api/v1/charges", payload, &result); err != nil {
		return nil, classify(err)
	}
	if result.ChargeID == "" {
		return nil, saga.Permanent(errors.New("payment service returned no charge ID"))
	}

	return json.Marshal(result)
}

func (c *checkoutCapabilities) refundPayment(ctx context.Context, req saga.Request) (json.RawMessage, error) {
	input, err := checkoutInput(req)
	if err != nil {
		return nil, err
	}

	var charged domain.ChargePaymentResult
	if err := json.Unmarshal(req.Result, &charged); err != nil {
		return nil, saga.Permanent(errors.Wrap(err, "stored charge result is unreadable"))
	}

	payload := domain.RefundPaymentRequest{
		IdempotencyKey: req.IdempotencyKey,
		ChargeID:       charged.ChargeID,
		Amount:         input.Total,
	}

	if err := c.client.PostJSON(ctx, c.services.PaymentURL+"/api/v1/refunds", payload, nil); err != nil {
		return nil, classify(err)
	}
	return nil, nil
}

func (c *checkoutCapabilities) finalizeOrder(ctx context.Context, req saga.Request) (json.RawMessage, error) {
	input, err := checkoutInput(req)
	if err != nil {
		return nil, err
	}

	var reserved domain.ReserveInventoryResult
	if err := stepResult(req, domain.StepReserveInventory, &reserved); err != nil {
		return nil, err
	}

	var charged domain.ChargePaymentResult
	if err := stepResult(req, domain.StepChargePayment, &charged); err != nil {
		return nil, err
	}

	payload := domain.FinalizeOrderRequest{
		IdempotencyKey: req.IdempotencyKey,
		OrderID:        input.OrderID,
		CustomerID:     input.CustomerID,
		Items:          input.Items,
		ReservationID:  reserved.ReservationID,
		ChargeID:       charged.ChargeID,
	}

	var result domain.FinalizeOrderResult
	if err := c.client.PostJSON(ctx, c.services.OrderURL+"/api/v1/orders", payload, &result); err != nil {
		return nil, classify(err)
	}
	if result.OrderID == "" {
		return nil, saga.Permanent(errors.New("order service returned no order ID"))
	}

	return json.Marshal(result)
}

func (c *checkoutCapabilities) cancelOrder(ctx context.Context, req saga.Request) (json.RawMessage, error) {
	var finalized domain.FinalizeOrderResult
	if err := json.Unmarshal(req.Result, &finalized); err != nil {
		return nil, saga.Permanent(errors.Wrap(err, "stored order result is unreadable"))
	}

	payload := domain.CancelOrderRequest{
		IdempotencyKey: req.IdempotencyKey,
		OrderID:        finalized.OrderID,
	}

	if err := c.client.PostJSON(ctx, c.services.OrderURL+"/api/v1/orders/cancel", payload, nil); err != nil {
		return nil, classify(err)
	}
	return nil, nil
}

func (c *checkoutCapabilities) notifyCustomer(ctx context.Context, req saga.Request) (json.RawMessage, error) {
	input, err := checkoutInput(req)
	if err != nil {
		return nil, err
	}

	payload := domain.NotifyCustomerRequest{
		IdempotencyKey: req.IdempotencyKey,
		CustomerID:     input.CustomerID,
		OrderID:        input.OrderID,
	}

	if err := c.client.PostJSON(ctx, c.services.NotificationURL+"/api/v1/notifications", payload, nil); err != nil {
		return nil, classify(err)
	}
	return nil, nil
}

func checkoutInput(req saga.Request) (*domain.CheckoutRequest, error) {
	var input domain.CheckoutRequest
	if err := json.Unmarshal(req.Input, &input); err != nil {
		return nil, saga.Permanent(errors.Wrap(err, "saga input is unreadable"))
	}
	return &input, nil
}

func stepResult(req saga.Request, step string, out interface{}) error {
	raw, ok := req.Results[step]
	if !ok {
		return saga.Permanent(errors.Errorf("missing result of step %s", step))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return saga.Permanent(errors.Wrapf(err, "stored result of step %s is unreadable", step))
	}
	return nil
}

// classify maps downstream call failures onto the retry taxonomy. Network
// failures and 5xx/429 responses are worth retrying; everything else,
// including auth rejections, is not.
func classify(err error) error {
	var transportErr *auth.TransportError
	if errors.As(err, &transportErr) {
		return saga.Transient(err)
	}

	var statusErr *auth.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Temporary() {
			return saga.Transient(err)
		}
		return saga.Permanent(err)
	}

	return saga.Permanent(err)
}
