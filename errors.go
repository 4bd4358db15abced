package qiskitruntime

import (
	"errors"
	"fmt"
)

// ApiErr carries a user facing message alongside a developer facing one.
type ApiErr struct {
	usrMsg, devMsg string
}

func (e ApiErr) Error() string { return fmt.Sprintf("usr_msg: %s\ndev_msg: %s", e.usrMsg, e.devMsg) }

// NewCredentialsErr represents bad or missing service credentials.
func NewCredentialsErr(usrMsg, devMsg string) error { return ApiErr{usrMsg, devMsg} }

// ErrJobTimeout is returned when waiting on a job outlives its deadline.
var ErrJobTimeout = errors.New("timed out waiting for job to complete")

// ErrSessionClosed is returned when running a primitive on a closed session.
var ErrSessionClosed = errors.New("session is closed")

// RequestError is a non-2xx response from the runtime API.
type RequestError struct {
	StatusCode int
	Body       string
	RequestID  string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("runtime API request %s failed with status %d: %s", e.RequestID, e.StatusCode, e.Body)
}

// JobError is reported when a job reaches a failed or cancelled terminal state.
type JobError struct {
	JobID  string
	Status string
	Reason string
}

func (e *JobError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("job %s ended with status %s", e.JobID, e.Status)
	}
	return fmt.Sprintf("job %s ended with status %s: %s", e.JobID, e.Status, e.Reason)
}

// ValidationError reports a locally detected invalid input, before any
// request is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

func validationErr(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
