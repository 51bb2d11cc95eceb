package handlers

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/commercium/checkout-system/checkout-service/application"
	"github.com/commercium/checkout-system/shared/events"
)

// CheckoutEventHandlers contains event handlers for the checkout service
type CheckoutEventHandlers struct {
	resumeSaga *application.ResumeSaga
	logger     zerolog.Logger
}

// NewCheckoutEventHandlers creates new checkout event handlers
func NewCheckoutEventHandlers(resumeSaga *application.ResumeSaga, logger zerolog.Logger) *CheckoutEventHandlers {
	return &CheckoutEventHandlers{
		resumeSaga: resumeSaga,
		logger:     logger.With().Str("component", "checkout_event_handlers").Logger(),
	}
}

// Handle implements the events.EventHandler interface
func (h *CheckoutEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.SagaResumeRequestedEvent:
		return h.HandleSagaResumeRequest(ctx, event)
	default:
		// Unknown event type, ignore
		return nil
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *CheckoutEventHandlers) HandlerID() string {
	return "checkout-service-event-handler"
}

// HandleSagaResumeRequest drives an interrupted saga forward. Returning an
// error leaves the message on the queue for redelivery, which is safe because
// resuming a terminal saga is a no-op.
func (h *CheckoutEventHandlers) HandleSagaResumeRequest(ctx context.Context, event *events.Event) error {
	data, ok := event.Data.(map[string]interface{})
	if !ok {
		return errors.New("malformed resume request payload")
	}

	sagaID, ok := data["saga_id"].(string)
	if !ok || sagaID == "" {
		return errors.New("saga_id is required")
	}

	h.logger.Info().Str("saga_id", sagaID).Msg("resuming saga from queue")

	if err := h.resumeSaga.Execute(ctx, &application.ResumeSagaCommand{SagaID: sagaID}); err != nil {
		if errors.Is(err, application.ErrSagaNotFound) {
			// Nothing to resume. Dropping the message beats poisoning the queue.
			h.logger.Warn().Str("saga_id", sagaID).Msg("resume requested for unknown saga")
			return nil
		}
		return errors.Wrap(err, "failed to resume saga")
	}

	return nil
}
