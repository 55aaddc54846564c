package domain

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes failures for logging and for the caller-facing message
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "invalid_input"
	KindEngineUnavailable ErrorKind = "engine_unavailable"
	KindEngineProcess     ErrorKind = "engine_process_failure"
	KindEngineTimeout     ErrorKind = "engine_timeout"
	KindEngineResolution  ErrorKind = "engine_resolution_failure"
	KindCacheSweep        ErrorKind = "cache_sweep_failure"
	KindArtifactMissing   ErrorKind = "artifact_missing"
	KindInternal          ErrorKind = "internal"
)

// Reasons used by the extraction backends
const (
	ReasonProcessFailed     = "process failed"
	ReasonDecodeFailure     = "decode failure"
	ReasonResolutionFailure = "resolution failure"
	ReasonTimeout           = "timeout"
	ReasonNotFound          = "engine not found"
)

// Sentinel errors
var (
	ErrInvalidURL        = errors.New("invalid or unsupported video url")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrEmptyTitle        = errors.New("title is empty after sanitization")
	ErrArtifactMissing   = errors.New("download produced no usable file")
)

// Error is a categorized failure. Detail carries raw diagnostics (engine
// stderr, undecodable output) meant for logs, not for end users.
type Error struct {
	Kind   ErrorKind
	Reason string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewEngineError creates an engine failure of the given kind
func NewEngineError(kind ErrorKind, reason, detail string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Detail: detail, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// DetailOf returns the raw diagnostic detail carried by err, if any
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return ""
}

// IsKind reports whether err is categorized as kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// UserMessage returns the caller-safe message for a kind
func UserMessage(kind ErrorKind) string {
	switch kind {
	case KindInvalidInput:
		return "Invalid request: check the video URL, format and title."
	case KindEngineUnavailable:
		return "The extraction engine is not available."
	case KindEngineTimeout:
		return "The extraction engine took too long to respond."
	case KindEngineResolution:
		return "This video could not be resolved. It may be private, removed or restricted."
	case KindEngineProcess:
		return "The extraction engine failed to process this video."
	case KindArtifactMissing:
		return "The download did not produce a file."
	default:
		return "An internal error occurred."
	}
}

// InvalidInputf creates an InvalidInput error with a formatted reason
func InvalidInputf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Reason: fmt.Sprintf(format, args...)}
}
