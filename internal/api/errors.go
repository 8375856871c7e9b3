package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode is the closed classification every non-2xx response is mapped to
// at the gateway boundary. Callers never see raw transport errors.
type ErrorCode string

const (
	CodeNetworkError       ErrorCode = "NETWORK_ERROR"
	CodeBadRequest         ErrorCode = "BAD_REQUEST"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeConflict           ErrorCode = "CONFLICT"
	CodeValidationError    ErrorCode = "VALIDATION_ERROR"
	CodeRateLimit          ErrorCode = "RATE_LIMIT"
	CodeServerError        ErrorCode = "SERVER_ERROR"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeUnknown            ErrorCode = "UNKNOWN_ERROR"
)

// Error is the classified API failure the gateway yields.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details json.RawMessage
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Retryable reports whether the failure belongs to the transient class the
// retry helper may act on: no response at all, or a 5xx. 4xx failures are
// never retried.
func (e *Error) Retryable() bool {
	switch e.Code {
	case CodeNetworkError, CodeServerError, CodeServiceUnavailable:
		return true
	}
	return e.Status >= 500
}

// networkError wraps a transport-level failure where no response arrived.
func networkError(err error) *Error {
	return &Error{
		Code:    CodeNetworkError,
		Message: "Network error. Please check your connection and try again.",
		Details: mustDetails(err.Error()),
	}
}

// serverMessage is the error envelope the backend uses across endpoints.
type serverMessage struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Error   string `json:"error"`
}

// classify translates an HTTP status plus response body into an *Error.
// A server-supplied message wins when present; fixed fallbacks otherwise.
func classify(status int, body []byte) *Error {
	var sm serverMessage
	_ = json.Unmarshal(body, &sm)
	msg := sm.Message
	if msg == "" {
		msg = sm.Detail
	}
	if msg == "" {
		msg = sm.Error
	}

	e := &Error{Status: status, Details: json.RawMessage(body)}

	switch status {
	case http.StatusBadRequest:
		e.Code = CodeBadRequest
		e.Message = fallback(msg, "Invalid request. Please check your input and try again.")
	case http.StatusUnauthorized:
		e.Code = CodeUnauthorized
		e.Message = "Authentication required. Please log in and try again."
	case http.StatusForbidden:
		e.Code = CodeForbidden
		e.Message = "Access denied. You don't have permission to perform this action."
	case http.StatusNotFound:
		e.Code = CodeNotFound
		e.Message = "The requested resource was not found."
	case http.StatusConflict:
		e.Code = CodeConflict
		e.Message = fallback(msg, "Conflict. The resource already exists or is in use.")
	case http.StatusUnprocessableEntity:
		e.Code = CodeValidationError
		e.Message = fallback(msg, "Validation error. Please check your input.")
	case http.StatusTooManyRequests:
		e.Code = CodeRateLimit
		e.Message = "Too many requests. Please wait a moment and try again."
	case http.StatusInternalServerError:
		e.Code = CodeServerError
		e.Message = "Internal server error. Please try again later."
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		e.Code = CodeServiceUnavailable
		e.Message = "Service temporarily unavailable. Please try again later."
	default:
		e.Code = CodeUnknown
		e.Message = fallback(msg, "An unexpected error occurred. Please try again.")
	}
	return e
}

func fallback(msg, def string) string {
	if msg != "" {
		return msg
	}
	return def
}

func mustDetails(msg string) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return data
}
