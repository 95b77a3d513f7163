package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
)

// Advising errors. Tools convert these into structured error results.
var (
	ErrDataUnavailable = errors.New("data unavailable")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTermNotFound    = errors.New("term not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrNotFound        = errors.New("not found")
	ErrNoMatch         = errors.New("no matching answer")
)

type ErrorKind string

const (
	KindDataUnavailable ErrorKind = "data_unavailable"
	KindInvalidArgument ErrorKind = "invalid_argument"
	KindTermNotFound    ErrorKind = "term_not_found"
	KindStudentNotFound ErrorKind = "student_not_found"
	KindNotFound        ErrorKind = "not_found"
	KindNoMatch         ErrorKind = "no_match"
	KindInternal        ErrorKind = "internal"
)

// KindOf maps err onto the error kind reported at the tool boundary.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDataUnavailable):
		return KindDataUnavailable
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrValidation):
		return KindInvalidArgument
	case errors.Is(err, ErrTermNotFound):
		return KindTermNotFound
	case errors.Is(err, ErrStudentNotFound):
		return KindStudentNotFound
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNoMatch):
		return KindNoMatch
	default:
		return KindInternal
	}
}
