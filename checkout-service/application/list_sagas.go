package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/commercium/checkout-system/shared/saga"
)

const defaultListLimit = 50

// ListSagasQuery represents the query to list sagas by status
type ListSagasQuery struct {
	Status string `json:"status"`
	Limit  int    `json:"limit"`
}

// ListSagasResponse represents the response for listing sagas
type ListSagasResponse struct {
	Sagas []*SagaView `json:"sagas"`
}

// ListSagas use case
type ListSagas struct {
	store saga.Store
}

// NewListSagas creates a new ListSagas use case
func NewListSagas(store saga.Store) *ListSagas {
	return &ListSagas{store: store}
}

// Execute executes the list sagas use case
func (uc *ListSagas) Execute(ctx context.Context, query *ListSagasQuery) (*ListSagasResponse, error) {
	status, err := parseSagaStatus(query.Status)
	if err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	instances, err := uc.store.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sagas")
	}

	views := make([]*SagaView, len(instances))
	for i, instance := range instances {
		views[i] = toSagaView(instance)
	}

	return &ListSagasResponse{Sagas: views}, nil
}

func parseSagaStatus(raw string) (saga.SagaStatus, error) {
	switch status := saga.SagaStatus(raw); status {
	case saga.SagaStatusPending, saga.SagaStatusRunning, saga.SagaStatusCompensating,
		saga.SagaStatusCompleted, saga.SagaStatusCompensated, saga.SagaStatusCompensationFailed:
		return status, nil
	default:
		return "", errors.Errorf("unknown saga status %q", raw)
	}
}
