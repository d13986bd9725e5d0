package timer

import "fmt"

// ValidationError marks input that was rejected before any storage task was
// enqueued: blank required fields, malformed dates, non-numeric amounts.
// These surface inline to the caller and never reach the worker.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
