package printing

import "errors"

// Sentinel errors returned by the orchestrator. Failures are always returned as values.
var (
	// ErrBusy is returned when a job is requested while another one is in flight.
	ErrBusy = errors.New("printing: a print job is already in progress")
	// ErrBackendUnavailable means no print/PDF backend is configured or reachable.
	ErrBackendUnavailable = errors.New("printing: backend unavailable")
	// ErrBackendFailure means the backend call completed but reported failure.
	ErrBackendFailure = errors.New("printing: backend reported failure")
	// ErrPreviewFailure means the preview window could not be opened.
	ErrPreviewFailure = errors.New("printing: preview failed")
	// ErrCancelled is attached to results that arrived after Cancel.
	ErrCancelled = errors.New("printing: job cancelled")
	// ErrInvalidJob means the job carries no model or no data to print.
	ErrInvalidJob = errors.New("printing: invalid job")
)

// Error codes carried by BackendError.
const (
	ErrCodeUnavailable  = "BACKEND_UNAVAILABLE"
	ErrCodeRenderFailed = "RENDER_FAILED"
	ErrCodeSpoolFailed  = "SPOOL_FAILED"
	ErrCodeCancelled    = "CANCELLED"
	ErrCodeInvalidInput = "INVALID_INPUT"
)

// BackendError represents a failure reported by a print/PDF backend.
type BackendError struct {
	Code    string
	Message string
	Cause   error
}

func (e *BackendError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match the taxonomy sentinel that corresponds to Code.
func (e *BackendError) Is(target error) bool {
	switch target {
	case ErrBackendUnavailable:
		return e.Code == ErrCodeUnavailable
	case ErrBackendFailure:
		return e.Code != ErrCodeUnavailable
	}
	return false
}

// NewBackendError creates a new BackendError.
func NewBackendError(code, message string, cause error) *BackendError {
	return &BackendError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
