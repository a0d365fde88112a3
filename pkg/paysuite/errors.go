package paysuite

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type ErrorType string

const (
	ErrorTypeInvalidArgument ErrorType = "INVALID_ARGUMENT"
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeAPI             ErrorType = "API_ERROR"
)

type ErrorCode string

const (
	ErrCodeEmptyToken ErrorCode = "EMPTY_TOKEN"

	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeMissingField     ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidReturnURL ErrorCode = "INVALID_RETURN_URL"
	ErrCodeInvalidUUID      ErrorCode = "INVALID_UUID"

	ErrCodeTransport         ErrorCode = "TRANSPORT_ERROR"
	ErrCodeHTTPStatus        ErrorCode = "HTTP_ERROR"
	ErrCodeEmptyResponse     ErrorCode = "EMPTY_RESPONSE"
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	ErrCodeEncodeFailed      ErrorCode = "ENCODE_FAILED"
)

// AppError is the single error type returned by the client. Type tells the
// three kinds apart; StatusCode is only set for HTTP failures.
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Field      string      `json:"field,omitempty"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// GetDetailedMessage joins every collected validation failure.
func (e *AppError) GetDetailedMessage() string {
	if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 1 {
		messages := make([]string, len(validationErrors.Errors))
		for i, err := range validationErrors.Errors {
			messages[i] = err.Message
		}
		return strings.Join(messages, "; ")
	}
	return e.Error()
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewInvalidArgumentError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidArgument,
		Code:    code,
		Message: message,
	}
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
		Field:   field,
	}
}

// NewAPIError builds a remote failure. statusCode is zero when no HTTP
// status was received.
func NewAPIError(message string, code ErrorCode, statusCode int) *AppError {
	return &AppError{
		Type:       ErrorTypeAPI,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func NewTransportError(cause error) *AppError {
	return NewAPIError("Transport error", ErrCodeTransport, 0).WithCause(cause)
}

var (
	ErrEmptyToken       = NewInvalidArgumentError("Token cannot be empty", ErrCodeEmptyToken)
	ErrInvalidUUID      = NewValidationFieldError("id", "Invalid UUID format", ErrCodeInvalidUUID)
	ErrInvalidAmount    = NewValidationFieldError("amount", "Amount must be a positive number", ErrCodeInvalidAmount)
	ErrInvalidReturnURL = NewValidationFieldError("return_url", "Invalid return URL", ErrCodeInvalidReturnURL)
	ErrEmptyResponse    = NewAPIError("Empty response from server", ErrCodeEmptyResponse, 0)
)

// Is matches on type and code so the sentinels above work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code && e.Message == t.Message
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsInvalidArgument(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypeInvalidArgument
}

func IsValidationError(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypeValidation
}

func IsAPIError(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypeAPI
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       ErrorType   `json:"type"`
		Code       ErrorCode   `json:"code"`
		Message    string      `json:"message"`
		Field      string      `json:"field,omitempty"`
		Details    interface{} `json:"details,omitempty"`
		StatusCode int         `json:"status_code,omitempty"`
	}{
		Type:       e.Type,
		Code:       e.Code,
		Message:    e.Message,
		Field:      e.Field,
		Details:    e.Details,
		StatusCode: e.StatusCode,
	})
}
