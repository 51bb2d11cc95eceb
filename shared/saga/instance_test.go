package saga

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercium/checkout-system/shared/events"
)

func twoStepDefinition() *Definition {
	return &Definition{
		Name: "order",
		Steps: []StepDefinition{
			testStep("first", "a", "undo-a", 3),
			testStep("second", "b", "", 3),
		},
	}
}

func TestNewSagaInstance(t *testing.T) {
	def := twoStepDefinition()
	instance := NewSagaInstance(def, json.RawMessage(`{"x":1}`), "key-1")

	assert.False(t, instance.ID.IsEmpty())
	assert.Equal(t, "order", instance.Name)
	assert.Equal(t, "key-1", instance.IdempotencyKey)
	assert.Equal(t, SagaStatusPending, instance.Status)
	assert.Equal(t, 1, instance.Version.Value)

	require.Len(t, instance.Steps, 2)
	assert.Equal(t, "first", instance.Steps[0].Name)
	assert.Equal(t, 0, instance.Steps[0].Ordinal)
	assert.Equal(t, StepStatusPending, instance.Steps[1].Status)

	recorded := instance.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, events.SagaStartedEvent, recorded[0].EventType)
	assert.Equal(t, instance.ID, recorded[0].AggregateID)
}

func TestSagaInstance_Transitions(t *testing.T) {
	tests := []struct {
		name          string
		run           func(s *SagaInstance) error
		expectedError string
	}{
		{
			name: "start from pending",
			run: func(s *SagaInstance) error {
				return s.Start()
			},
		},
		{
			name: "cannot start twice",
			run: func(s *SagaInstance) error {
				if err := s.Start(); err != nil {
					return err
				}
				return s.Start()
			},
			expectedError: "cannot start saga",
		},
		{
			name: "cannot complete with pending steps",
			run: func(s *SagaInstance) error {
				if err := s.Start(); err != nil {
					return err
				}
				return s.Complete()
			},
			expectedError: "cannot complete saga",
		},
		{
			name: "complete after all steps succeed",
			run: func(s *SagaInstance) error {
				if err := s.Start(); err != nil {
					return err
				}
				if err := s.MarkStepSucceeded(0, nil, 1); err != nil {
					return err
				}
				if err := s.MarkStepSucceeded(1, nil, 1); err != nil {
					return err
				}
				return s.Complete()
			},
		},
		{
			name: "cannot compensate a pending saga",
			run: func(s *SagaInstance) error {
				return s.StartCompensation()
			},
			expectedError: "cannot compensate saga",
		},
		{
			name: "cannot fail a step of a pending saga",
			run: func(s *SagaInstance) error {
				return s.FailStep(0, "boom", 1)
			},
			expectedError: "cannot fail a step",
		},
		{
			name: "cannot succeed the same step twice",
			run: func(s *SagaInstance) error {
				if err := s.Start(); err != nil {
					return err
				}
				if err := s.MarkStepSucceeded(0, nil, 1); err != nil {
					return err
				}
				return s.MarkStepSucceeded(0, nil, 1)
			},
			expectedError: "cannot succeed step",
		},
		{
			name: "cannot compensate a step that never succeeded",
			run: func(s *SagaInstance) error {
				if err := s.Start(); err != nil {
					return err
				}
				return s.MarkStepCompensated(1)
			},
			expectedError: "cannot compensate step",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instance := NewSagaInstance(twoStepDefinition(), nil, "key")
			err := tt.run(instance)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSagaInstance_EveryMutationBumpsVersionOnce(t *testing.T) {
	instance := NewSagaInstance(twoStepDefinition(), nil, "key")
	require.Equal(t, 1, instance.Version.Value)

	require.NoError(t, instance.Start())
	assert.Equal(t, 2, instance.Version.Value)

	require.NoError(t, instance.MarkStepSucceeded(0, json.RawMessage(`{}`), 2))
	assert.Equal(t, 3, instance.Version.Value)

	// Failing a step and entering rollback is one transition and one bump.
	require.NoError(t, instance.FailStep(1, "boom", 3))
	assert.Equal(t, 4, instance.Version.Value)
	assert.Equal(t, SagaStatusCompensating, instance.Status)
	assert.Equal(t, StepStatusFailed, instance.Steps[1].Status)

	require.NoError(t, instance.MarkStepCompensated(0))
	assert.Equal(t, 5, instance.Version.Value)

	require.NoError(t, instance.FinishCompensation())
	assert.Equal(t, 6, instance.Version.Value)
	assert.Equal(t, SagaStatusCompensated, instance.Status)
}

func TestSagaInstance_FinishCompensation_FailedUndoIsTerminalFailure(t *testing.T) {
	instance := NewSagaInstance(twoStepDefinition(), nil, "key")
	require.NoError(t, instance.Start())
	require.NoError(t, instance.MarkStepSucceeded(0, nil, 1))
	require.NoError(t, instance.FailStep(1, "boom", 1))
	require.NoError(t, instance.MarkStepCompensationFailed(0, "undo broke"))
	require.NoError(t, instance.FinishCompensation())

	assert.Equal(t, SagaStatusCompensationFailed, instance.Status)
	assert.True(t, instance.Terminal())
}

func TestSagaInstance_NextPendingStep(t *testing.T) {
	instance := NewSagaInstance(twoStepDefinition(), nil, "key")
	require.NoError(t, instance.Start())

	assert.Equal(t, 0, instance.NextPendingStep())
	require.NoError(t, instance.MarkStepSucceeded(0, nil, 1))
	assert.Equal(t, 1, instance.NextPendingStep())
	require.NoError(t, instance.MarkStepSucceeded(1, nil, 1))
	assert.Equal(t, -1, instance.NextPendingStep())
}

func TestSagaInstance_SucceededResults(t *testing.T) {
	instance := NewSagaInstance(twoStepDefinition(), nil, "key")
	require.NoError(t, instance.Start())
	require.NoError(t, instance.MarkStepSucceeded(0, json.RawMessage(`{"id":"r-1"}`), 1))

	results := instance.SucceededResults()
	require.Len(t, results, 1)
	assert.JSONEq(t, `{"id":"r-1"}`, string(results["first"]))
}
