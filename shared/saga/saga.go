// Package saga drives ordered multi-step execution across independently
// failing remote services, with compensating actions on partial failure and
// idempotent retries. Sagas execute forward step by step; on irrecoverable
// failure the completed steps are undone in reverse order.
package saga

// SagaStatus represents the current status of a saga instance
type SagaStatus string

const (
	SagaStatusPending            SagaStatus = "pending"
	SagaStatusRunning            SagaStatus = "running"
	SagaStatusCompensating       SagaStatus = "compensating"
	SagaStatusCompleted          SagaStatus = "completed"
	SagaStatusCompensated        SagaStatus = "compensated"
	SagaStatusCompensationFailed SagaStatus = "compensation_failed"
)

// Terminal reports whether the status admits no further transitions.
func (s SagaStatus) Terminal() bool {
	switch s {
	case SagaStatusCompleted, SagaStatusCompensated, SagaStatusCompensationFailed:
		return true
	}
	return false
}

// StepStatus represents the status of a single step record
type StepStatus string

const (
	StepStatusPending            StepStatus = "pending"
	StepStatusSucceeded          StepStatus = "succeeded"
	StepStatusFailed             StepStatus = "failed"
	StepStatusCompensated        StepStatus = "compensated"
	StepStatusCompensationFailed StepStatus = "compensation_failed"
)
