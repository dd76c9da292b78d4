package provisioning

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDiscardedByOperator is the rollback cause when the operator rejects a committed transaction.
var ErrDiscardedByOperator = errors.New("discarded by operator")

// ValidationFailedError reports rejected input. No remote object was touched.
type ValidationFailedError struct {
	Errors []ValidationError
}

func (e *ValidationFailedError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", ve.Field, ve.Message))
	}
	if len(msgs) == 1 {
		return "validation failed: " + msgs[0]
	}
	return fmt.Sprintf("validation failed:\n  %s", strings.Join(msgs, "\n  "))
}

// AllocationExhaustedError reports that no unique value was found within the attempt budget.
type AllocationExhaustedError struct {
	Resource string
	Attempts int
}

func (e *AllocationExhaustedError) Error() string {
	return fmt.Sprintf("unable to allocate unique %s after %d attempts", e.Resource, e.Attempts)
}

// RemoteOperationError wraps a failed call against the inventory.
type RemoteOperationError struct {
	Step string
	Err  error
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *RemoteOperationError) Unwrap() error {
	return e.Err
}

// ConsistencyViolationError reports remote state that contradicts what the transaction just wrote.
type ConsistencyViolationError struct {
	Step    string
	Message string
}

func (e *ConsistencyViolationError) Error() string {
	return fmt.Sprintf("consistency violation in %s: %s", e.Step, e.Message)
}

// RollbackFailure is one log entry that could not be deleted.
type RollbackFailure struct {
	Step Step
	Err  error
}

// RolledBackError reports a transaction that was rolled back.
// Unwrap returns the error that caused the rollback.
type RolledBackError struct {
	Original error
	Failures []RollbackFailure
}

func (e *RolledBackError) Error() string {
	var b strings.Builder
	if e.Original != nil {
		b.WriteString(e.Original.Error())
	} else {
		b.WriteString("transaction rolled back")
	}
	if len(e.Failures) == 0 {
		b.WriteString(" (rolled back)")
		return b.String()
	}
	fmt.Fprintf(&b, " (rollback incomplete, %d object(s) left behind:", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, " %s: %v;", f.Step.Object, f.Err)
	}
	b.WriteString(")")
	return b.String()
}

func (e *RolledBackError) Unwrap() error {
	return e.Original
}

// Clean reports whether every logged object was removed.
func (e *RolledBackError) Clean() bool {
	return len(e.Failures) == 0
}

// IsValidation reports whether err is or wraps a *ValidationFailedError.
func IsValidation(err error) bool {
	var target *ValidationFailedError
	return errors.As(err, &target)
}

// IsAllocationExhausted reports whether err is or wraps an *AllocationExhaustedError.
func IsAllocationExhausted(err error) bool {
	var target *AllocationExhaustedError
	return errors.As(err, &target)
}

// IsRemote reports whether err is or wraps a *RemoteOperationError.
func IsRemote(err error) bool {
	var target *RemoteOperationError
	return errors.As(err, &target)
}

// IsConsistency reports whether err is or wraps a *ConsistencyViolationError.
func IsConsistency(err error) bool {
	var target *ConsistencyViolationError
	return errors.As(err, &target)
}

// IsRolledBack reports whether err is or wraps a *RolledBackError.
func IsRolledBack(err error) bool {
	var target *RolledBackError
	return errors.As(err, &target)
}

// isTyped reports whether err already belongs to the taxonomy and must not be rewrapped.
func isTyped(err error) bool {
	return IsValidation(err) || IsAllocationExhausted(err) || IsRemote(err) ||
		IsConsistency(err) || IsRolledBack(err)
}
