package apperrors

import "errors"

// Taxonomy errors. Every error returned to an HTTP caller wraps exactly one of these.
var (
	ErrValidationFailed = errors.New("invalid request")
	ErrConflict         = errors.New("conflict")
	ErrResourceNotFound = errors.New("not found")
	ErrStoreUnavailable = errors.New("internal error")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// Admin session errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrTooManyRequests    = errors.New("too many requests")
)

// Course errors
var (
	ErrCourseNotFound      = NewResourceNotFoundError("course not found")
	ErrCourseAlreadyExists = NewConflictError("course with this courseId already exists")
)

// Week errors
var (
	ErrWeekNotFound      = NewResourceNotFoundError("week not found")
	ErrWeekAlreadyExists = NewConflictError("week with this courseId and weekId already exists")
)

// Lesson errors
var (
	ErrLessonNotFound      = NewResourceNotFoundError("lesson not found")
	ErrLessonAlreadyExists = NewConflictError("lesson with this lessonId already exists in this week")
	ErrLessonSlugTaken     = NewConflictError("lesson with this slug already exists in this week")
)

// NewResourceNotFoundError creates a not-found error with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a conflict error with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewValidationError creates a validation error naming the offending field
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// NewMissingFieldError is the validation error for an absent required field
func NewMissingFieldError(field string) error {
	return NewValidationError(field, "missing required field: "+field)
}

// NewStoreError wraps a driver failure as an internal error
func NewStoreError(op string, err error) error {
	return &CustomError{
		Err:     ErrStoreUnavailable,
		Message: op + ": " + err.Error(),
		Cause:   err,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
	// Cause is the underlying driver error, if any; it is logged, never returned to callers
	Cause error
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// Message returns the caller-facing message of err, falling back to its taxonomy text
func Message(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Field returns the offending field recorded on a validation error, if any
func Field(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Details != nil {
		if f, ok := ce.Details["field"].(string); ok {
			return f
		}
	}
	return ""
}
