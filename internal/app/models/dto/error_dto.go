package dto

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	// Admin session errors
	ErrorCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrorCodeInvalidToken       ErrorCode = "AUTH_005"
	ErrorCodeExpiredToken       ErrorCode = "AUTH_006"
	ErrorCodeUnauthorized       ErrorCode = "AUTH_008"
	ErrorCodeForbidden          ErrorCode = "AUTH_009"

	// Resource errors
	ErrorCodeResourceNotFound      ErrorCode = "RES_001"
	ErrorCodeResourceAlreadyExists ErrorCode = "RES_002"

	// Validation errors
	ErrorCodeValidationFailed ErrorCode = "VAL_001"

	// Request errors
	ErrorCodeMethodNotAllowed ErrorCode = "REQ_001"
	ErrorCodeTooManyRequests  ErrorCode = "REQ_002"

	// Server errors
	ErrorCodeInternalServer ErrorCode = "SRV_001"
	ErrorCodeDatabaseError  ErrorCode = "SRV_002"
)

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code    ErrorCode   `json:"code" example:"VAL_001"`
	Message string      `json:"message" example:"missing required field: courseId"`
	Field   string      `json:"field,omitempty" example:"courseId"`
	Details interface{} `json:"details,omitempty"`
}

// NewErrorDetail creates a new error detail
func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{
		Code:    code,
		Message: message,
	}
}

// WithField adds a field name to the error detail
func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

// WithDetails adds additional details to the error
func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

// FieldError is one entry of a validation failure
type FieldError struct {
	Field   string `json:"field" example:"slug"`
	Message string `json:"message" example:"slug must be lowercase words separated by hyphens"`
}

// HandleValidationError turns a binding or validator error into an ErrorDetail.
// The first failing field becomes the headline message.
func HandleValidationError(err error) *ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewErrorDetail(ErrorCodeValidationFailed, "invalid request body").WithDetails(err.Error())
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: formatFieldError(fe)})
	}
	return NewErrorDetail(ErrorCodeValidationFailed, fields[0].Message).
		WithField(fields[0].Field).
		WithDetails(fields)
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "missing required field: " + fe.Field()
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email address"
	case "url":
		return fe.Field() + " must be a valid URL"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "slug":
		return fe.Field() + " must be lowercase words separated by hyphens"
	case "key":
		return fe.Field() + " may only contain letters, digits, '-' and '_'"
	default:
		return fe.Field() + " validation failed: " + fe.Tag()
	}
}
