package register

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed submission field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing required field: %s", e.Field)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ArtifactDecodeError reports a signature payload that is not valid base64.
type ArtifactDecodeError struct {
	Err error
}

func (e *ArtifactDecodeError) Error() string {
	return fmt.Sprintf("invalid signature image: %v", e.Err)
}

func (e *ArtifactDecodeError) Unwrap() error { return e.Err }

// ArtifactWriteError reports a failure to persist the signature image.
type ArtifactWriteError struct {
	Name string
	Err  error
}

func (e *ArtifactWriteError) Error() string {
	return fmt.Sprintf("failed to store signature %s: %v", e.Name, e.Err)
}

func (e *ArtifactWriteError) Unwrap() error { return e.Err }

// DuplicateSubmissionError is returned when the identifier is already registered.
type DuplicateSubmissionError struct {
	Identifier string
}

func (e *DuplicateSubmissionError) Error() string {
	return fmt.Sprintf("identifier %s has already been registered", e.Identifier)
}

// PersistenceError wraps a failure of the backing store. Op is one of
// "read", "append", "lock" or "header".
type PersistenceError struct {
	Op  string
	Err error
}

// Error surfaces the underlying store message unchanged.
func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Status is the three-way outcome reported to the form.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusDuplicate Status = "duplicate"
	StatusError     Status = "error"
)

const (
	successMessage   = "Attendance submitted successfully!"
	duplicateMessage = "This ID number has already been registered. Duplicate submissions are not allowed."
)

// Outcome converts a Submit result into the status and message returned to
// the caller.
func Outcome(err error) (Status, string) {
	if err == nil {
		return StatusSuccess, successMessage
	}
	var dup *DuplicateSubmissionError
	if errors.As(err, &dup) {
		return StatusDuplicate, duplicateMessage
	}
	return StatusError, err.Error()
}

// IsDuplicate reports whether err is a duplicate rejection.
func IsDuplicate(err error) bool {
	var dup *DuplicateSubmissionError
	return errors.As(err, &dup)
}

func isSubmissionError(err error) bool {
	var (
		ve  *ValidationError
		de  *ArtifactDecodeError
		we  *ArtifactWriteError
		dup *DuplicateSubmissionError
		pe  *PersistenceError
	)
	return errors.As(err, &ve) || errors.As(err, &de) || errors.As(err, &we) ||
		errors.As(err, &dup) || errors.As(err, &pe)
}
