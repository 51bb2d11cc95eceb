package saga

import (
	"github.com/pkg/errors"
)

var (
	// ErrVersionConflict signals that a concurrent writer advanced the saga
	// instance since it was read. The losing writer must abort, not merge.
	ErrVersionConflict = errors.New("saga version conflict")

	// ErrSagaNotFound signals a lookup for an unknown saga instance.
	ErrSagaNotFound = errors.New("saga not found")

	// ErrUnknownDefinition signals a Begin or Resume against a saga name the
	// orchestrator was not configured with.
	ErrUnknownDefinition = errors.New("unknown saga definition")

	// ErrDuplicateKey signals a Create that lost the race on an idempotency
	// key. The caller re-reads and returns the winner's instance.
	ErrDuplicateKey = errors.New("duplicate idempotency key")
)

// TransientError marks a step failure that may succeed on retry, such as a
// timeout, a dropped connection, or a 5xx from a downstream service.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError marks a step failure that retrying cannot fix, such as a
// business rule rejection or a downstream auth failure.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return "permanent: " + e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// CompensationError records the failure of a compensating action after its
// retries were exhausted.
type CompensationError struct {
	Step string
	Err  error
}

func (e *CompensationError) Error() string {
	return "compensation of step " + e.Step + " failed: " + e.Err.Error()
}

func (e *CompensationError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retriable. Returns nil on nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// Permanent wraps err as non-retriable. Returns nil on nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsTransient reports whether err is classified as retriable. Unclassified
// errors are not: retrying unknown failures risks duplicate side effects, so
// only explicitly transient errors earn a retry.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsPermanent reports whether err is explicitly classified as non-retriable.
func IsPermanent(err error) bool {
	var permanent *PermanentError
	return errors.As(err, &permanent)
}
