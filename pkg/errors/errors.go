// Package errors provides structured error types for FitAI.
//
// Handlers and services return these types so that HTTP status mapping,
// logging and retry decisions are consistent across functions.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error identifier for categorization.
type ErrorCode string

// Common error codes used throughout FitAI.
const (
	// User errors
	CodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	CodeUserUnauthorized ErrorCode = "USER_UNAUTHORIZED"
	CodeQuotaExceeded    ErrorCode = "QUOTA_EXCEEDED"

	// AI service errors
	CodeAINotConfigured    ErrorCode = "AI_NOT_CONFIGURED"
	CodeAIUnavailable      ErrorCode = "AI_UNAVAILABLE"
	CodeAIRateLimited      ErrorCode = "AI_RATE_LIMITED"
	CodeAIModelNotFound    ErrorCode = "AI_MODEL_NOT_FOUND"
	CodeAIPermissionDenied ErrorCode = "AI_PERMISSION_DENIED"
	CodeAIEmptyResponse    ErrorCode = "AI_EMPTY_RESPONSE"
	CodeAIBadResponse      ErrorCode = "AI_BAD_RESPONSE"

	// Infrastructure errors
	CodeStorageError ErrorCode = "STORAGE_ERROR"
	CodePubSubError  ErrorCode = "PUBSUB_ERROR"
	CodeSecretError  ErrorCode = "SECRET_ERROR"

	// General errors
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
	CodeInternalError   ErrorCode = "INTERNAL_ERROR"
	CodeTimeoutError    ErrorCode = "TIMEOUT_ERROR"
)

// FitAIError is the base error type for all FitAI errors.
type FitAIError struct {
	Code      ErrorCode         // Unique error code for categorization
	Message   string            // Human-readable error message
	Cause     error             // Underlying error (if any)
	Retryable bool              // Whether the operation can be retried
	Metadata  map[string]string // Additional context
}

// Error implements the error interface.
func (e *FitAIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *FitAIError) Unwrap() error {
	return e.Cause
}

// Is matches on error code so sentinels compare equal after WithCause/WithMessage.
func (e *FitAIError) Is(target error) bool {
	t, ok := target.(*FitAIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *FitAIError) WithCause(cause error) *FitAIError {
	return &FitAIError{
		Code:      e.Code,
		Message:   e.Message,
		Cause:     cause,
		Retryable: e.Retryable,
		Metadata:  e.Metadata,
	}
}

// WithMessage adds a custom message.
func (e *FitAIError) WithMessage(msg string) *FitAIError {
	return &FitAIError{
		Code:      e.Code,
		Message:   msg,
		Cause:     e.Cause,
		Retryable: e.Retryable,
		Metadata:  e.Metadata,
	}
}

// WithMetadata adds contextual metadata.
func (e *FitAIError) WithMetadata(key, value string) *FitAIError {
	meta := make(map[string]string)
	for k, v := range e.Metadata {
		meta[k] = v
	}
	meta[key] = value
	return &FitAIError{
		Code:      e.Code,
		Message:   e.Message,
		Cause:     e.Cause,
		Retryable: e.Retryable,
		Metadata:  meta,
	}
}

// Pre-defined sentinel errors for common cases.
// Use these with errors.Is() or wrap them with .WithCause().
var (
	ErrUserNotFound     = &FitAIError{Code: CodeUserNotFound, Message: "user not found", Retryable: false}
	ErrUserUnauthorized = &FitAIError{Code: CodeUserUnauthorized, Message: "unauthorized", Retryable: false}
	ErrQuotaExceeded    = &FitAIError{Code: CodeQuotaExceeded, Message: "generation limit reached", Retryable: false}

	ErrAINotConfigured    = &FitAIError{Code: CodeAINotConfigured, Message: "Gemini API key not configured", Retryable: false}
	ErrAIUnavailable      = &FitAIError{Code: CodeAIUnavailable, Message: "AI service error", Retryable: true}
	ErrAIRateLimited      = &FitAIError{Code: CodeAIRateLimited, Message: "AI service rate limit exceeded", Retryable: true}
	ErrAIModelNotFound    = &FitAIError{Code: CodeAIModelNotFound, Message: "AI model not found", Retryable: false}
	ErrAIPermissionDenied = &FitAIError{Code: CodeAIPermissionDenied, Message: "AI service permission denied", Retryable: false}
	ErrAIEmptyResponse    = &FitAIError{Code: CodeAIEmptyResponse, Message: "no response generated from AI service", Retryable: true}
	ErrAIBadResponse      = &FitAIError{Code: CodeAIBadResponse, Message: "AI response could not be parsed", Retryable: true}

	ErrStorageError = &FitAIError{Code: CodeStorageError, Message: "storage error", Retryable: true}
	ErrPubSubError  = &FitAIError{Code: CodePubSubError, Message: "pubsub error", Retryable: true}
	ErrSecretError  = &FitAIError{Code: CodeSecretError, Message: "secret access error", Retryable: true}

	ErrValidation = &FitAIError{Code: CodeValidationError, Message: "validation error", Retryable: false}
	ErrInternal   = &FitAIError{Code: CodeInternalError, Message: "internal error", Retryable: false}
	ErrTimeout    = &FitAIError{Code: CodeTimeoutError, Message: "timeout", Retryable: true}
)

// New creates a new FitAIError with the given code and message.
func New(code ErrorCode, message string) *FitAIError {
	return &FitAIError{
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// NewRetryable creates a new retryable FitAIError.
func NewRetryable(code ErrorCode, message string) *FitAIError {
	return &FitAIError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// Wrap wraps an error with a FitAIError.
func Wrap(cause error, code ErrorCode, message string) *FitAIError {
	return &FitAIError{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: false,
	}
}

// WrapRetryable wraps an error with a retryable FitAIError.
func WrapRetryable(cause error, code ErrorCode, message string) *FitAIError {
	return &FitAIError{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: true,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var fe *FitAIError
	if stderrors.As(err, &fe) {
		return fe.Retryable
	}
	return false
}

// GetCode extracts the error code from an error, if available.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var fe *FitAIError
	if stderrors.As(err, &fe) {
		return fe.Code
	}
	return CodeInternalError
}

// HTTPStatus maps an error code to the status returned by HTTP functions.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case CodeValidationError:
		return http.StatusBadRequest
	case CodeUserUnauthorized:
		return http.StatusUnauthorized
	case CodeUserNotFound:
		return http.StatusNotFound
	case CodeQuotaExceeded, CodeAIRateLimited:
		return http.StatusTooManyRequests
	case CodeAIBadResponse, CodeAIEmptyResponse, CodeAIUnavailable, CodeAIModelNotFound, CodeAIPermissionDenied:
		return http.StatusBadGateway
	case CodeTimeoutError:
		return http.StatusGatewayTimeout
	case "":
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message safe to show to clients.
func PublicMessage(err error) string {
	var fe *FitAIError
	if stderrors.As(err, &fe) {
		return fe.Message
	}
	return "Error processing your request"
}
