package saga

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/commercium/checkout-system/shared/events"
	"github.com/commercium/checkout-system/shared/models"
)

// StepRecord is the persisted execution state of one step of one saga
// instance. Result holds the forward capability's payload and is what the
// step's compensation later receives.
type StepRecord struct {
	SagaID       models.ID
	Name         string
	Ordinal      int
	Status       StepStatus
	AttemptCount int
	Result       json.RawMessage
	ErrorSummary string
	Timestamps   models.Timestamps
}

// SagaInstance is the durable state of one saga execution. Every mutating
// method advances the version exactly once, so each persisted write carries
// a fresh optimistic locking token.
type SagaInstance struct {
	ID             models.ID
	Name           string
	IdempotencyKey string
	Status         SagaStatus
	Input          json.RawMessage
	Steps          []*StepRecord
	Timestamps     models.Timestamps
	Version        models.Version

	uncommittedEvents []*events.Event
}

// SagaLifecycleData is the payload of saga lifecycle events.
type SagaLifecycleData struct {
	SagaID         models.ID  `json:"saga_id"`
	SagaName       string     `json:"saga_name"`
	Status         SagaStatus `json:"status"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
}

// SagaStepData is the payload of step-level saga events.
type SagaStepData struct {
	SagaID       models.ID  `json:"saga_id"`
	SagaName     string     `json:"saga_name"`
	Step         string     `json:"step"`
	Ordinal      int        `json:"ordinal"`
	Status       StepStatus `json:"status"`
	AttemptCount int        `json:"attempt_count"`
	ErrorSummary string     `json:"error_summary,omitempty"`
}

// NewSagaInstance creates a pending instance of the given definition with one
// pending step record per defined step.
func NewSagaInstance(def *Definition, input json.RawMessage, idempotencyKey string) *SagaInstance {
	id := models.GenerateUUID()
	now := models.NewTimestamps()

	steps := make([]*StepRecord, len(def.Steps))
	for i, step := range def.Steps {
		steps[i] = &StepRecord{
			SagaID:     id,
			Name:       step.Name,
			Ordinal:    i,
			Status:     StepStatusPending,
			Timestamps: now,
		}
	}

	instance := &SagaInstance{
		ID:             id,
		Name:           def.Name,
		IdempotencyKey: idempotencyKey,
		Status:         SagaStatusPending,
		Input:          input,
		Steps:          steps,
		Timestamps:     now,
		Version:        models.NewVersion(),
	}

	instance.recordEvent(events.NewEvent(id, events.SagaStartedEvent, SagaLifecycleData{
		SagaID:         id,
		SagaName:       def.Name,
		Status:         SagaStatusPending,
		IdempotencyKey: idempotencyKey,
	}))

	return instance
}

// Start moves a pending instance into execution.
func (s *SagaInstance) Start() error {
	if s.Status != SagaStatusPending {
		return errors.Errorf("cannot start saga in status %s", s.Status)
	}

	s.Status = SagaStatusRunning
	s.touch()
	return nil
}

// Complete marks the instance completed. Every step must have succeeded.
func (s *SagaInstance) Complete() error {
	if s.Status != SagaStatusRunning {
		return errors.Errorf("cannot complete saga in status %s", s.Status)
	}
	for _, step := range s.Steps {
		if step.Status != StepStatusSucceeded {
			return errors.Errorf("cannot complete saga with step %s in status %s", step.Name, step.Status)
		}
	}

	s.Status = SagaStatusCompleted
	s.touch()
	s.recordEvent(events.NewEvent(s.ID, events.SagaCompletedEvent, s.lifecycleData()))
	return nil
}

// StartCompensation switches a running instance into rollback after a step
// failed permanently.
func (s *SagaInstance) StartCompensation() error {
	if s.Status != SagaStatusRunning {
		return errors.Errorf("cannot compensate saga in status %s", s.Status)
	}

	s.Status = SagaStatusCompensating
	s.touch()
	s.recordEvent(events.NewEvent(s.ID, events.SagaCompensatingEvent, s.lifecycleData()))
	return nil
}

// FinishCompensation settles a compensating instance into its terminal
// status: compensation_failed when any undo failed, compensated otherwise.
func (s *SagaInstance) FinishCompensation() error {
	if s.Status != SagaStatusCompensating {
		return errors.Errorf("cannot finish compensation in status %s", s.Status)
	}

	s.Status = SagaStatusCompensated
	eventType := events.SagaCompensatedEvent
	for _, step := range s.Steps {
		if step.Status == StepStatusCompensationFailed {
			s.Status = SagaStatusCompensationFailed
			eventType = events.SagaCompensationFailedEvent
			break
		}
	}

	s.touch()
	s.recordEvent(events.NewEvent(s.ID, eventType, s.lifecycleData()))
	return nil
}

// MarkStepSucceeded records the forward result of a step before the saga
// advances past it.
func (s *SagaInstance) MarkStepSucceeded(ordinal int, result json.RawMessage, attempts int) error {
	step, err := s.stepAt(ordinal)
	if err != nil {
		return err
	}
	if step.Status != StepStatusPending {
		return errors.Errorf("cannot succeed step %s in status %s", step.Name, step.Status)
	}

	step.Status = StepStatusSucceeded
	step.Result = result
	step.AttemptCount = attempts
	step.ErrorSummary = ""
	step.Timestamps = step.Timestamps.Update()
	s.touch()
	s.recordEvent(events.NewEvent(s.ID, events.SagaStepSucceededEvent, s.stepData(step)))
	return nil
}

// FailStep records the permanent failure of a step and switches the saga
// into rollback in the same transition. The failed record and the
// compensating status always land in one persisted write, so no resumable
// state exists in which a failed step is followed by further forward work.
func (s *SagaInstance) FailStep(ordinal int, summary string, attempts int) error {
	if s.Status != SagaStatusRunning {
		return errors.Errorf("cannot fail a step of saga in status %s", s.Status)
	}
	step, err := s.stepAt(ordinal)
	if err != nil {
		return err
	}
	if step.Status != StepStatusPending {
		return errors.Errorf("cannot fail step %s in status %s", step.Name, step.Status)
	}

	step.Status = StepStatusFailed
	step.AttemptCount = attempts
	step.ErrorSummary = summary
	step.Timestamps = step.Timestamps.Update()
	s.Status = SagaStatusCompensating
	s.touch()
	s.recordEvent(events.NewEvent(s.ID, events.SagaStepFailedEvent, s.stepData(step)))
	s.recordEvent(events.NewEvent(s.ID, events.SagaCompensatingEvent, s.lifecycleData()))
	return nil
}

// MarkStepCompensated records that a step's forward effect was undone.
func (s *SagaInstance) MarkStepCompensated(ordinal int) error {
	step, err := s.stepAt(ordinal)
	if err != nil {
		return err
	}
	if step.Status != StepStatusSucceeded {
		return errors.Errorf("cannot compensate step %s in status %s", step.Name, step.Status)
	}

	step.Status = StepStatusCompensated
	step.Timestamps = step.Timestamps.Update()
	s.touch()
	return nil
}

// MarkStepCompensationFailed records an undo that exhausted its retries. The
// saga will end in compensation_failed and wait for manual intervention.
func (s *SagaInstance) MarkStepCompensationFailed(ordinal int, summary string) error {
	step, err := s.stepAt(ordinal)
	if err != nil {
		return err
	}
	if step.Status != StepStatusSucceeded {
		return errors.Errorf("cannot fail compensation of step %s in status %s", step.Name, step.Status)
	}

	step.Status = StepStatusCompensationFailed
	step.ErrorSummary = summary
	step.Timestamps = step.Timestamps.Update()
	s.touch()
	return nil
}

// RecordStepInterrupted persists the attempt count of a step whose execution
// was cut short by context cancellation, leaving the step pending so a later
// Resume retries it.
func (s *SagaInstance) RecordStepInterrupted(ordinal int, attempts int) error {
	step, err := s.stepAt(ordinal)
	if err != nil {
		return err
	}
	if step.Status != StepStatusPending {
		return errors.Errorf("cannot interrupt step %s in status %s", step.Name, step.Status)
	}

	step.AttemptCount = attempts
	step.Timestamps = step.Timestamps.Update()
	s.touch()
	return nil
}

// HasFailedStep reports whether any step record carries a permanent failure.
// A running instance with a failed step must never execute further forward
// steps; it belongs in compensation.
func (s *SagaInstance) HasFailedStep() bool {
	for _, step := range s.Steps {
		if step.Status == StepStatusFailed {
			return true
		}
	}
	return false
}

// NextPendingStep returns the ordinal of the first step still pending, or -1
// when the forward path is done.
func (s *SagaInstance) NextPendingStep() int {
	for _, step := range s.Steps {
		if step.Status == StepStatusPending {
			return step.Ordinal
		}
	}
	return -1
}

// SucceededResults collects the stored results of all succeeded steps, keyed
// by step name, for handing to later capabilities.
func (s *SagaInstance) SucceededResults() map[string]json.RawMessage {
	results := make(map[string]json.RawMessage)
	for _, step := range s.Steps {
		if step.Status == StepStatusSucceeded && len(step.Result) > 0 {
			results[step.Name] = step.Result
		}
	}
	return results
}

// Terminal reports whether the instance reached a terminal status.
func (s *SagaInstance) Terminal() bool {
	return s.Status.Terminal()
}

// Events returns the uncommitted domain events.
func (s *SagaInstance) Events() []*events.Event {
	return s.uncommittedEvents
}

// ClearEvents clears uncommitted events after publishing.
func (s *SagaInstance) ClearEvents() {
	s.uncommittedEvents = nil
}

func (s *SagaInstance) stepAt(ordinal int) (*StepRecord, error) {
	if ordinal < 0 || ordinal >= len(s.Steps) {
		return nil, errors.Errorf("saga %s has no step at ordinal %d", s.ID, ordinal)
	}
	return s.Steps[ordinal], nil
}

func (s *SagaInstance) touch() {
	s.Version = s.Version.Update()
	s.Timestamps = s.Timestamps.Update()
}

func (s *SagaInstance) recordEvent(event *events.Event) {
	s.uncommittedEvents = append(s.uncommittedEvents, event.WithCorrelationID(s.ID))
}

func (s *SagaInstance) lifecycleData() SagaLifecycleData {
	return SagaLifecycleData{
		SagaID:   s.ID,
		SagaName: s.Name,
		Status:   s.Status,
	}
}

func (s *SagaInstance) stepData(step *StepRecord) SagaStepData {
	return SagaStepData{
		SagaID:       s.ID,
		SagaName:     s.Name,
		Step:         step.Name,
		Ordinal:      step.Ordinal,
		Status:       step.Status,
		AttemptCount: step.AttemptCount,
		ErrorSummary: step.ErrorSummary,
	}
}
