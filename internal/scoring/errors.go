package scoring

import (
	"errors"
	"fmt"
)

// Rule identifies which scoring rule a rejected delivery violated.
type Rule string

const (
	RuleInningsComplete   Rule = "innings_complete"
	RuleConsecutiveBowler Rule = "consecutive_bowler"
	RuleOverCapacity      Rule = "over_capacity"
	RuleScoringRange      Rule = "scoring_range"
	RuleWicketCapacity    Rule = "wicket_capacity"
	RuleDismissalKind     Rule = "dismissal_kind"
)

// ValidationError rejects a proposed delivery. No state changes.
type ValidationError struct {
	Rule    Rule
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

func newValidationError(rule Rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing innings, player stat or delivery.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConsistencyError aborts a mutation that would break an invariant, e.g. an
// undo that cannot locate a referenced stat row. The whole operation rolls
// back; nothing is partially applied.
type ConsistencyError struct {
	Message string
}

func (e *ConsistencyError) Error() string { return e.Message }

// StorageError wraps a persistence failure. The delivery or undo is not
// considered recorded and the submission may be retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// AsValidation returns the ValidationError inside err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConsistency reports whether err is a ConsistencyError.
func IsConsistency(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}

// IsStorage reports whether err is a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
