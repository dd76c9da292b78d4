package provisioning

import (
	"fmt"
)

// Severity levels for validation findings.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError represents a request validation error or warning.
type ValidationError struct {
	Field    string // Request field that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == SeverityError
}

// Errorf builds an error-level finding.
func Errorf(field, format string, args ...interface{}) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

// Warnf builds a warning-level finding.
func Warnf(field, format string, args ...interface{}) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// ReportValidation logs every finding and returns a *ValidationFailedError
// holding the error-level ones, or nil when there are none.
func ReportValidation(observer Observer, findings []ValidationError) error {
	var errs []ValidationError
	for _, ve := range findings {
		LogValidation(observer, ve)
		if ve.IsError() {
			errs = append(errs, ve)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationFailedError{Errors: errs}
}
