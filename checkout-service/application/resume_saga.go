package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/commercium/checkout-system/shared/models"
	"github.com/commercium/checkout-system/shared/saga"
)

// ResumeSagaCommand represents the command to resume an interrupted saga
type ResumeSagaCommand struct {
	SagaID string `json:"saga_id"`
}

// ResumeSaga use case. Resuming a terminal saga is a no-op, so redelivered
// resume requests are harmless.
type ResumeSaga struct {
	runner SagaRunner
}

// NewResumeSaga creates a new ResumeSaga use case
func NewResumeSaga(runner SagaRunner) *ResumeSaga {
	return &ResumeSaga{runner: runner}
}

// Execute executes the resume saga use case
func (uc *ResumeSaga) Execute(ctx context.Context, cmd *ResumeSagaCommand) error {
	if cmd.SagaID == "" {
		return errors.New("saga ID is required")
	}

	sagaID, err := models.NewID(cmd.SagaID)
	if err != nil {
		return errors.Wrap(err, "invalid saga ID")
	}

	if err := uc.runner.Resume(ctx, sagaID); err != nil {
		if errors.Is(err, saga.ErrSagaNotFound) {
			return ErrSagaNotFound
		}
		return err
	}

	return nil
}
