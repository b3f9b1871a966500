package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the subsystem.
type ErrorCode string

// Browser collaborator error codes
const (
	ErrBrowserStart    ErrorCode = "BROWSER_START"
	ErrBrowserClosed   ErrorCode = "BROWSER_CLOSED"
	ErrNavigateFailed  ErrorCode = "NAVIGATE_FAILED"
	ErrScrapeFailed    ErrorCode = "SCRAPE_FAILED"
	ErrCurrentLocation ErrorCode = "CURRENT_LOCATION"
)

// Coordinator error codes
const (
	ErrNoPageHandle ErrorCode = "NO_PAGE_HANDLE"
)

// Error represents a structured error with code, message, and metadata.
// 只有数据获取类故障（浏览器协作方）才通过 Error 向调用方传播；
// 缓存内部的存储/序列化故障一律降级为未命中并记录日志。
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// IsCode checks whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
