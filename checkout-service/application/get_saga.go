package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/commercium/checkout-system/shared/models"
	"github.com/commercium/checkout-system/shared/saga"
)

// ErrSagaNotFound is returned when the queried saga does not exist.
var ErrSagaNotFound = errors.New("saga not found")

// GetSagaQuery represents the query to get a saga instance
type GetSagaQuery struct {
	SagaID string `json:"saga_id"`
}

// StepView is the read model of one step record.
type StepView struct {
	Name         string          `json:"name"`
	Ordinal      int             `json:"ordinal"`
	Status       string          `json:"status"`
	AttemptCount int             `json:"attempt_count"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorSummary string          `json:"error_summary,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SagaView is the read model of a saga instance.
type SagaView struct {
	SagaID         string          `json:"saga_id"`
	Name           string          `json:"name"`
	IdempotencyKey string          `json:"idempotency_key"`
	Status         string          `json:"status"`
	Input          json.RawMessage `json:"input"`
	Steps          []StepView      `json:"steps"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// GetSaga use case
type GetSaga struct {
	store saga.Store
}

// NewGetSaga creates a new GetSaga use case
func NewGetSaga(store saga.Store) *GetSaga {
	return &GetSaga{store: store}
}

// Execute executes the get saga use case
func (uc *GetSaga) Execute(ctx context.Context, query *GetSagaQuery) (*SagaView, error) {
	if query.SagaID == "" {
		return nil, errors.New("saga ID is required")
	}

	sagaID, err := models.NewID(query.SagaID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid saga ID")
	}

	instance, err := uc.store.Get(ctx, sagaID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load saga")
	}
	if instance == nil {
		return nil, ErrSagaNotFound
	}

	return toSagaView(instance), nil
}

func toSagaView(instance *saga.SagaInstance) *SagaView {
	steps := make([]StepView, len(instance.Steps))
	for i, step := range instance.Steps {
		steps[i] = StepView{
			Name:         step.Name,
			Ordinal:      step.Ordinal,
			Status:       string(step.Status),
			AttemptCount: step.AttemptCount,
			Result:       step.Result,
			ErrorSummary: step.ErrorSummary,
			UpdatedAt:    step.Timestamps.UpdatedAt,
		}
	}

	return &SagaView{
		SagaID:         instance.ID.String(),
		Name:           instance.Name,
		IdempotencyKey: instance.IdempotencyKey,
		Status:         string(instance.Status),
		Input:          instance.Input,
		Steps:          steps,
		CreatedAt:      instance.Timestamps.CreatedAt,
		UpdatedAt:      instance.Timestamps.UpdatedAt,
		Version:        instance.Version.Value,
	}
}
