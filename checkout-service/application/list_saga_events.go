package application

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/commercium/checkout-system/shared/events"
	"github.com/commercium/checkout-system/shared/models"
)

// ListSagaEventsQuery represents the query for a saga's audit trail
type ListSagaEventsQuery struct {
	SagaID string `json:"saga_id"`
}

// SagaEventView is the read model of one audit trail entry.
type SagaEventView struct {
	ID        string      `json:"id"`
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// ListSagaEventsResponse carries a saga's audit trail in stream order.
type ListSagaEventsResponse struct {
	SagaID string           `json:"saga_id"`
	Events []*SagaEventView `json:"events"`
}

// ListSagaEvents use case. The trail is what operators read when untangling a
// saga stuck in compensation_failed.
type ListSagaEvents struct {
	trail AuditTrail
}

// NewListSagaEvents creates a new ListSagaEvents use case
func NewListSagaEvents(trail AuditTrail) *ListSagaEvents {
	return &ListSagaEvents{trail: trail}
}

// Execute loads the persisted events of one saga, oldest first. A saga that
// never existed has an empty trail.
func (uc *ListSagaEvents) Execute(ctx context.Context, query *ListSagaEventsQuery) (*ListSagaEventsResponse, error) {
	if query.SagaID == "" {
		return nil, errors.New("saga ID is required")
	}

	sagaID, err := models.NewID(query.SagaID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid saga ID")
	}

	recorded, err := uc.trail.GetEvents(ctx, sagaID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load saga events")
	}

	views := make([]*SagaEventView, len(recorded))
	for i, event := range recorded {
		views[i] = toSagaEventView(event)
	}

	return &ListSagaEventsResponse{SagaID: sagaID.String(), Events: views}, nil
}

func toSagaEventView(event *events.Event) *SagaEventView {
	return &SagaEventView{
		ID:        event.ID.String(),
		EventType: event.EventType,
		Data:      event.Data,
		Timestamp: event.Timestamp,
	}
}
