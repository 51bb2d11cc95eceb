package infrastructure

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/commercium/checkout-system/shared/models"
	"github.com/commercium/checkout-system/shared/saga"
)

const uniqueViolation = "23505"

// PostgresSagaStore implements saga.Store using PostgreSQL. The saga row and
// its step rows are written together in one transaction; the saga row's
// version column carries the optimistic lock for the whole aggregate.
type PostgresSagaStore struct {
	db *sqlx.DB
}

// NewPostgresSagaStore creates a new PostgresSagaStore
func NewPostgresSagaStore(db *sqlx.DB) *PostgresSagaStore {
	return &PostgresSagaStore{db: db}
}

type postgresSaga struct {
	ID             string          `db:"id"`
	Name           string          `db:"name"`
	IdempotencyKey string          `db:"idempotency_key"`
	Status         string          `db:"status"`
	Input          json.RawMessage `db:"input"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
	Version        int             `db:"version"`
}

type postgresStep struct {
	SagaID       string          `db:"saga_id"`
	Name         string          `db:"name"`
	Ordinal      int             `db:"ordinal"`
	Status       string          `db:"status"`
	AttemptCount int             `db:"attempt_count"`
	Result       json.RawMessage `db:"result"`
	ErrorSummary string          `db:"error_summary"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// Create inserts a new saga instance with its step records. A race on the
// (name, idempotency_key) unique index surfaces as saga.ErrDuplicateKey.
func (s *PostgresSagaStore) Create(ctx context.Context, instance *saga.SagaInstance) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sagas (
			id, name, idempotency_key, status, input,
			created_at, updated_at, version
		) VALUES (
			:id, :name, :idempotency_key, :status, :input,
			:created_at, :updated_at, :version
		)`

	if _, err := tx.NamedExecContext(ctx, query, s.toPostgres(instance)); err != nil {
		if isUniqueViolation(err) {
			return saga.ErrDuplicateKey
		}
		return errors.Wrap(err, "failed to insert saga")
	}

	stepQuery := `
		INSERT INTO saga_steps (
			saga_id, name, ordinal, status, attempt_count,
			result, error_summary, created_at, updated_at
		) VALUES (
			:saga_id, :name, :ordinal, :status, :attempt_count,
			:result, :error_summary, :created_at, :updated_at
		)`

	for _, step := range instance.Steps {
		if _, err := tx.NamedExecContext(ctx, stepQuery, s.stepToPostgres(step)); err != nil {
			return errors.Wrap(err, "failed to insert saga step")
		}
	}

	return tx.Commit()
}

// Get loads a saga instance with its step records, or (nil, nil) when the ID
// is unknown.
func (s *PostgresSagaStore) Get(ctx context.Context, id models.ID) (*saga.SagaInstance, error) {
	query := `
		SELECT id, name, idempotency_key, status, input,
			   created_at, updated_at, version
		FROM sagas
		WHERE id = $1`

	var pgSaga postgresSaga
	err := s.db.GetContext(ctx, &pgSaga, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find saga")
	}

	return s.load(ctx, &pgSaga)
}

// FindByIdempotencyKey loads the saga created under the given key, or
// (nil, nil) when none exists.
func (s *PostgresSagaStore) FindByIdempotencyKey(ctx context.Context, sagaName, key string) (*saga.SagaInstance, error) {
	query := `
		SELECT id, name, idempotency_key, status, input,
			   created_at, updated_at, version
		FROM sagas
		WHERE name = $1 AND idempotency_key = $2`

	var pgSaga postgresSaga
	err := s.db.GetContext(ctx, &pgSaga, query, sagaName, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find saga by idempotency key")
	}

	return s.load(ctx, &pgSaga)
}

// Update writes the instance and its steps, applying only when the stored
// version is the one this writer read. A lost race returns
// saga.ErrVersionConflict without touching the rows.
func (s *PostgresSagaStore) Update(ctx context.Context, instance *saga.SagaInstance) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	query := `
		UPDATE sagas
		SET status = :status, updated_at = :updated_at, version = :version
		WHERE id = :id AND version = :old_version`

	res, err := tx.NamedExecContext(ctx, query, map[string]interface{}{
		"id":          instance.ID.String(),
		"status":      string(instance.Status),
		"updated_at":  instance.Timestamps.UpdatedAt,
		"version":     instance.Version.Value,
		"old_version": instance.Version.Previous(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to update saga")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if affected == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			"SELECT EXISTS (SELECT 1 FROM sagas WHERE id = $1)", instance.ID.String()); err != nil {
			return errors.Wrap(err, "failed to check saga existence")
		}
		if !exists {
			return saga.ErrSagaNotFound
		}
		return saga.ErrVersionConflict
	}

	stepQuery := `
		UPDATE saga_steps
		SET status = :status, attempt_count = :attempt_count,
			result = :result, error_summary = :error_summary, updated_at = :updated_at
		WHERE saga_id = :saga_id AND ordinal = :ordinal`

	for _, step := range instance.Steps {
		if _, err := tx.NamedExecContext(ctx, stepQuery, s.stepToPostgres(step)); err != nil {
			return errors.Wrap(err, "failed to update saga step")
		}
	}

	return tx.Commit()
}

// ListByStatus returns sagas in the given status, oldest first.
func (s *PostgresSagaStore) ListByStatus(ctx context.Context, status saga.SagaStatus, limit int) ([]*saga.SagaInstance, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, name, idempotency_key, status, input,
			   created_at, updated_at, version
		FROM sagas
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2`

	var pgSagas []postgresSaga
	if err := s.db.SelectContext(ctx, &pgSagas, query, string(status), limit); err != nil {
		return nil, errors.Wrap(err, "failed to list sagas by status")
	}

	instances := make([]*saga.SagaInstance, len(pgSagas))
	for i := range pgSagas {
		instance, err := s.load(ctx, &pgSagas[i])
		if err != nil {
			return nil, err
		}
		instances[i] = instance
	}

	return instances, nil
}

func (s *PostgresSagaStore) load(ctx context.Context, pgSaga *postgresSaga) (*saga.SagaInstance, error) {
	query := `
		SELECT saga_id, name, ordinal, status, attempt_count,
			   result, error_summary, created_at, updated_at
		FROM saga_steps
		WHERE saga_id = $1
		ORDER BY ordinal ASC`

	var pgSteps []postgresStep
	if err := s.db.SelectContext(ctx, &pgSteps, query, pgSaga.ID); err != nil {
		return nil, errors.Wrap(err, "failed to load saga steps")
	}

	return s.toDomain(pgSaga, pgSteps)
}

func (s *PostgresSagaStore) toPostgres(instance *saga.SagaInstance) *postgresSaga {
	return &postgresSaga{
		ID:             instance.ID.String(),
		Name:           instance.Name,
		IdempotencyKey: instance.IdempotencyKey,
		Status:         string(instance.Status),
		Input:          instance.Input,
		CreatedAt:      instance.Timestamps.CreatedAt,
		UpdatedAt:      instance.Timestamps.UpdatedAt,
		Version:        instance.Version.Value,
	}
}

func (s *PostgresSagaStore) stepToPostgres(step *saga.StepRecord) *postgresStep {
	return &postgresStep{
		SagaID:       step.SagaID.String(),
		Name:         step.Name,
		Ordinal:      step.Ordinal,
		Status:       string(step.Status),
		AttemptCount: step.AttemptCount,
		Result:       step.Result,
		ErrorSummary: step.ErrorSummary,
		CreatedAt:    step.Timestamps.CreatedAt,
		UpdatedAt:    step.Timestamps.UpdatedAt,
	}
}

func (s *PostgresSagaStore) toDomain(pgSaga *postgresSaga, pgSteps []postgresStep) (*saga.SagaInstance, error) {
	id, err := models.NewID(pgSaga.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid saga ID")
	}

	steps := make([]*saga.StepRecord, len(pgSteps))
	for i, pgStep := range pgSteps {
		steps[i] = &saga.StepRecord{
			SagaID:       id,
			Name:         pgStep.Name,
			Ordinal:      pgStep.Ordinal,
			Status:       saga.StepStatus(pgStep.Status),
			AttemptCount: pgStep.AttemptCount,
			Result:       pgStep.Result,
			ErrorSummary: pgStep.ErrorSummary,
			Timestamps: models.Timestamps{
				CreatedAt: pgStep.CreatedAt,
				UpdatedAt: pgStep.UpdatedAt,
			},
		}
	}

	return &saga.SagaInstance{
		ID:             id,
		Name:           pgSaga.Name,
		IdempotencyKey: pgSaga.IdempotencyKey,
		Status:         saga.SagaStatus(pgSaga.Status),
		Input:          pgSaga.Input,
		Steps:          steps,
		Timestamps: models.Timestamps{
			CreatedAt: pgSaga.CreatedAt,
			UpdatedAt: pgSaga.UpdatedAt,
		},
		Version: models.Version{Value: pgSaga.Version},
	}, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
