package application

import (
	"context"
	"encoding/json"

	"github.com/commercium/checkout-system/shared/auth"
	"github.com/commercium/checkout-system/shared/events"
	"github.com/commercium/checkout-system/shared/models"
)

// SagaRunner starts and resumes sagas. Implemented by saga.Orchestrator.
type SagaRunner interface {
	Begin(ctx context.Context, sagaName string, input json.RawMessage, idempotencyKey string) (models.ID, error)
	Resume(ctx context.Context, sagaID models.ID) error
}

// AuditTrail reads the persisted event stream of one saga. Implemented by
// the Postgres event store.
type AuditTrail interface {
	GetEvents(ctx context.Context, aggregateID models.ID) ([]*events.Event, error)
}

// TokenRotator rotates service identity tokens. Implemented by
// auth.TokenManager.
type TokenRotator interface {
	Rotate(ctx context.Context, serviceName string) (*auth.ServiceToken, error)
	RotateAll(ctx context.Context) error
}
