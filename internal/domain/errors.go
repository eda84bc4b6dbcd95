/**
 * @description
 * This file defines the coded application error carried across the service
 * boundary. Every rejection the service produces has a stable machine code
 * alongside a human-readable message, so API clients can branch on codes
 * while the message stays free to change.
 */

package domain

import (
	"errors"
	"fmt"
)

// Stable error codes surfaced to API clients.
const (
	CodeMissingName             = "MISSING_NAME"
	CodeInvalidName             = "INVALID_NAME"
	CodeMissingCost             = "MISSING_COST"
	CodeInvalidCost             = "INVALID_COST"
	CodeMissingBillingCycle     = "MISSING_BILLING_CYCLE"
	CodeInvalidBillingCycle     = "INVALID_BILLING_CYCLE"
	CodeMissingNextPaymentDate  = "MISSING_NEXT_PAYMENT_DATE"
	CodeInvalidNextPaymentDate  = "INVALID_NEXT_PAYMENT_DATE"
	CodeInvalidStatus           = "INVALID_STATUS"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeInvalidID               = "INVALID_ID"
	CodeNotFound                = "NOT_FOUND"
	CodeInternalError           = "INTERNAL_ERROR"
)

// Error is a coded application error. It satisfies the error interface so it
// can travel through ordinary error returns and be recovered with errors.As
// at the API boundary.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds a coded error with a fixed message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf builds a coded error with a formatted message.
func NewErrorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode extracts the machine code from err, or returns an empty string
// when err carries no coded application error.
func ErrorCode(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
