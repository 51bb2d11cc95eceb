package saga

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/commercium/checkout-system/shared/events"
	"github.com/commercium/checkout-system/shared/models"
	"github.com/commercium/checkout-system/shared/telemetry"
)

// Orchestrator runs saga instances: forward through the defined steps,
// backward through the compensations of the succeeded ones when a step fails
// permanently. Step-level errors never escape; they are absorbed into the
// instance's persisted status. Errors returned by Begin cover validation and
// the initial persist; errors returned by Resume are infrastructure failures
// only (store errors, version conflicts, context cancellation).
type Orchestrator struct {
	definitions  map[string]*Definition
	capabilities *CapabilityRegistry
	store        Store
	publisher    events.Publisher
	logger       zerolog.Logger
}

// NewOrchestrator wires the orchestrator with its definitions, validating
// every step's capability references up front.
func NewOrchestrator(
	store Store,
	capabilities *CapabilityRegistry,
	publisher events.Publisher,
	logger zerolog.Logger,
	definitions ...*Definition,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("saga store is required")
	}
	if capabilities == nil {
		return nil, errors.New("capability registry is required")
	}

	defs := make(map[string]*Definition, len(definitions))
	for _, def := range definitions {
		if err := def.Validate(capabilities); err != nil {
			return nil, err
		}
		if _, ok := defs[def.Name]; ok {
			return nil, errors.Errorf("saga %s registered twice", def.Name)
		}
		defs[def.Name] = def
	}

	return &Orchestrator{
		definitions:  defs,
		capabilities: capabilities,
		store:        store,
		publisher:    publisher,
		logger:       logger.With().Str("component", "saga_orchestrator").Logger(),
	}, nil
}

// Begin starts a saga under the given idempotency key. The instance is
// persisted before Begin returns; the steps then execute on a detached
// context, so the caller's deadline never cuts a running saga short and the
// ID is available immediately. A repeated Begin with the same saga name and
// key returns the existing instance's ID without executing anything,
// whatever state that instance is in.
func (o *Orchestrator) Begin(ctx context.Context, sagaName string, input json.RawMessage, idempotencyKey string) (models.ID, error) {
	ctx, span := telemetry.StartSpan(ctx, "saga.begin")
	defer span.End()

	def, ok := o.definitions[sagaName]
	if !ok {
		return "", errors.Wrap(ErrUnknownDefinition, sagaName)
	}
	if idempotencyKey == "" {
		return "", errors.New("idempotency key is required")
	}

	existing, err := o.store.FindByIdempotencyKey(ctx, sagaName, idempotencyKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to look up idempotency key")
	}
	if existing != nil {
		o.logger.Debug().
			Str("saga_id", existing.ID.String()).
			Str("idempotency_key", idempotencyKey).
			Msg("begin deduplicated against existing saga")
		return existing.ID, nil
	}

	instance := NewSagaInstance(def, input, idempotencyKey)
	if err := o.store.Create(ctx, instance); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			winner, findErr := o.store.FindByIdempotencyKey(ctx, sagaName, idempotencyKey)
			if findErr != nil {
				return "", errors.Wrap(findErr, "failed to resolve idempotency key race")
			}
			if winner != nil {
				return winner.ID, nil
			}
		}
		return "", errors.Wrap(err, "failed to create saga instance")
	}
	o.publish(ctx, instance)

	telemetry.RecordCounter(ctx, "saga_started_total", "Sagas started", 1,
		attribute.String("saga", sagaName))

	o.logger.Info().
		Str("saga_id", instance.ID.String()).
		Str("saga", sagaName).
		Msg("saga started")

	runCtx := context.WithoutCancel(ctx)
	go func() {
		if err := o.run(runCtx, def, instance); err != nil {
			o.logger.Error().
				Str("saga_id", instance.ID.String()).
				Err(err).
				Msg("saga run stopped, awaiting resume")
		}
	}()

	return instance.ID, nil
}

// Resume picks up a non-terminal saga where the last persisted write left it:
// pending and running instances continue forward, compensating ones continue
// the rollback. Resuming a terminal saga is a no-op.
func (o *Orchestrator) Resume(ctx context.Context, sagaID models.ID) error {
	ctx, span := telemetry.StartSpan(ctx, "saga.resume")
	defer span.End()

	instance, err := o.store.Get(ctx, sagaID)
	if err != nil {
		return errors.Wrap(err, "failed to load saga instance")
	}
	if instance == nil {
		return errors.Wrap(ErrSagaNotFound, sagaID.String())
	}
	if instance.Terminal() {
		return nil
	}

	def, ok := o.definitions[instance.Name]
	if !ok {
		return errors.Wrap(ErrUnknownDefinition, instance.Name)
	}

	o.logger.Info().
		Str("saga_id", instance.ID.String()).
		Str("saga", instance.Name).
		Str("status", string(instance.Status)).
		Msg("resuming saga")

	return o.run(ctx, def, instance)
}

func (o *Orchestrator) run(ctx context.Context, def *Definition, instance *SagaInstance) error {
	if instance.Status == SagaStatusPending {
		if err := instance.Start(); err != nil {
			return err
		}
		if err := o.save(ctx, instance); err != nil {
			return err
		}
	}

	// A running instance that already carries a failed step record came out
	// of an interrupted write from an older engine; it must roll back, never
	// advance past the failure.
	if instance.Status == SagaStatusRunning && instance.HasFailedStep() {
		if err := instance.StartCompensation(); err != nil {
			return err
		}
		if err := o.save(ctx, instance); err != nil {
			return err
		}
	}

	if instance.Status == SagaStatusRunning {
		if err := o.runForward(ctx, def, instance); err != nil {
			return err
		}
	}

	if instance.Status == SagaStatusCompensating {
		return o.compensate(ctx, def, instance)
	}

	return nil
}

func (o *Orchestrator) runForward(ctx context.Context, def *Definition, instance *SagaInstance) error {
	for {
		ordinal := instance.NextPendingStep()
		if ordinal < 0 {
			break
		}

		stepDef, err := def.step(ordinal)
		if err != nil {
			return err
		}

		result, attempts, stepErr := o.invokeWithRetries(ctx, instance, ordinal, stepDef, forwardAction)
		if stepErr == nil {
			if err := instance.MarkStepSucceeded(ordinal, result, attempts); err != nil {
				return err
			}
			if err := o.save(ctx, instance); err != nil {
				return err
			}
			continue
		}

		if ctx.Err() != nil {
			if err := instance.RecordStepInterrupted(ordinal, attempts); err != nil {
				return err
			}
			if err := o.save(ctx, instance); err != nil {
				return err
			}
			return ctx.Err()
		}

		o.logger.Warn().
			Str("saga_id", instance.ID.String()).
			Str("step", stepDef.Name).
			Int("attempts", attempts).
			Err(stepErr).
			Msg("step failed, compensating")
		telemetry.RecordCounter(ctx, "saga_step_failed_total", "Saga steps that failed permanently", 1,
			attribute.String("saga", instance.Name),
			attribute.String("step", stepDef.Name))

		// The failed record and the compensating status go down in one write;
		// a crash here leaves nothing the resume path could run forward.
		if err := instance.FailStep(ordinal, stepErr.Error(), attempts); err != nil {
			return err
		}
		if err := o.save(ctx, instance); err != nil {
			return err
		}
		return nil
	}

	if err := instance.Complete(); err != nil {
		return err
	}
	if err := o.save(ctx, instance); err != nil {
		return err
	}

	telemetry.RecordCounter(ctx, "saga_completed_total", "Sagas completed", 1,
		attribute.String("saga", instance.Name))
	o.logger.Info().
		Str("saga_id", instance.ID.String()).
		Str("saga", instance.Name).
		Msg("saga completed")

	return nil
}

// compensate undoes succeeded steps in strict reverse order. A failed undo is
// recorded and the rollback continues with the remaining steps, so a single
// stuck compensation does not leave earlier resources held.
func (o *Orchestrator) compensate(ctx context.Context, def *Definition, instance *SagaInstance) error {
	for ordinal := len(instance.Steps) - 1; ordinal >= 0; ordinal-- {
		record := instance.Steps[ordinal]
		if record.Status != StepStatusSucceeded {
			continue
		}

		stepDef, err := def.step(ordinal)
		if err != nil {
			return err
		}
		if stepDef.Compensate == "" {
			continue
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, _, compErr := o.invokeWithRetries(ctx, instance, ordinal, stepDef, compensateAction)
		if compErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			o.logger.Error().
				Str("saga_id", instance.ID.String()).
				Str("step", stepDef.Name).
				Err(compErr).
				Msg("compensation failed")
			telemetry.RecordCounter(ctx, "saga_compensation_failed_total", "Compensations that exhausted retries", 1,
				attribute.String("saga", instance.Name),
				attribute.String("step", stepDef.Name))

			if err := instance.MarkStepCompensationFailed(ordinal, compErr.Error()); err != nil {
				return err
			}
		} else {
			if err := instance.MarkStepCompensated(ordinal); err != nil {
				return err
			}
		}

		if err := o.save(ctx, instance); err != nil {
			return err
		}
	}

	if err := instance.FinishCompensation(); err != nil {
		return err
	}
	if err := o.save(ctx, instance); err != nil {
		return err
	}

	telemetry.RecordCounter(ctx, "saga_compensated_total", "Sagas that finished rollback", 1,
		attribute.String("saga", instance.Name),
		attribute.String("status", string(instance.Status)))
	o.logger.Info().
		Str("saga_id", instance.ID.String()).
		Str("saga", instance.Name).
		Str("status", string(instance.Status)).
		Msg("saga rollback finished")

	return nil
}

type actionKind string

const (
	forwardAction    actionKind = "forward"
	compensateAction actionKind = "compensate"
)

// invokeWithRetries runs one capability with the step's timeout, retrying
// transient failures under the step's backoff policy. It returns the result,
// the number of attempts made, and the final error. Context cancellation is
// reported through the error with attempts preserved so the caller can
// persist them.
func (o *Orchestrator) invokeWithRetries(ctx context.Context, instance *SagaInstance, ordinal int, stepDef StepDefinition, kind actionKind) (json.RawMessage, int, error) {
	capabilityName := stepDef.Forward
	idempotencyKey := stepIdempotencyKey(instance.ID, stepDef.Name)
	if kind == compensateAction {
		capabilityName = stepDef.Compensate
		idempotencyKey += ":undo"
	}

	capability, err := o.capabilities.Resolve(capabilityName)
	if err != nil {
		return nil, 0, Permanent(err)
	}

	req := Request{
		SagaID:         instance.ID,
		SagaName:       instance.Name,
		Step:           stepDef.Name,
		IdempotencyKey: idempotencyKey,
		Input:          instance.Input,
		Results:        instance.SucceededResults(),
	}
	if kind == compensateAction {
		if record, recErr := instance.stepAt(ordinal); recErr == nil {
			req.Result = record.Result
		}
	}

	backoff := stepDef.Backoff
	if backoff.InitialInterval <= 0 {
		backoff = DefaultBackoff
	}

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= stepDef.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}
		attempts = attempt

		attemptCtx, cancel := context.WithTimeout(ctx, stepDef.Timeout)
		started := time.Now()
		result, invokeErr := capability.Invoke(attemptCtx, req)
		cancel()

		telemetry.RecordHistogram(ctx, "saga_step_duration_seconds", "Duration of saga step attempts",
			time.Since(started).Seconds(),
			attribute.String("saga", instance.Name),
			attribute.String("step", stepDef.Name),
			attribute.String("action", string(kind)))

		if invokeErr == nil {
			return result, attempt, nil
		}
		if ctx.Err() != nil {
			return nil, attempt, ctx.Err()
		}

		// An attempt that outlived its own deadline while the saga context is
		// still alive counts as transient.
		if errors.Is(invokeErr, context.DeadlineExceeded) {
			invokeErr = Transient(invokeErr)
		}
		lastErr = invokeErr

		if !IsTransient(invokeErr) || attempt == stepDef.MaxAttempts {
			break
		}

		delay := backoff.Interval(attempt)
		o.logger.Debug().
			Str("saga_id", instance.ID.String()).
			Str("step", stepDef.Name).
			Str("action", string(kind)).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Err(invokeErr).
			Msg("retrying step after transient failure")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, attempt, ctx.Err()
		case <-timer.C:
		}
	}

	if kind == compensateAction {
		return nil, attempts, &CompensationError{Step: stepDef.Name, Err: lastErr}
	}
	return nil, attempts, lastErr
}

// save persists the instance and publishes its recorded events. Persistence
// failures abort the run; publish failures are logged and dropped, the saga
// state is already durable.
func (o *Orchestrator) save(ctx context.Context, instance *SagaInstance) error {
	if err := o.store.Update(ctx, instance); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			o.logger.Warn().
				Str("saga_id", instance.ID.String()).
				Msg("lost optimistic lock, another worker owns this saga")
		}
		return err
	}

	o.publish(ctx, instance)
	return nil
}

func (o *Orchestrator) publish(ctx context.Context, instance *SagaInstance) {
	recorded := instance.Events()
	if len(recorded) == 0 || o.publisher == nil {
		instance.ClearEvents()
		return
	}

	if err := o.publisher.Publish(ctx, recorded...); err != nil {
		o.logger.Error().
			Str("saga_id", instance.ID.String()).
			Err(err).
			Msg("failed to publish saga events")
	}
	instance.ClearEvents()
}

func stepIdempotencyKey(sagaID models.ID, stepName string) string {
	return sagaID.String() + ":" + stepName
}
