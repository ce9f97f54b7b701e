package apperrors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	// Authorization
	ErrUnauthorized ErrorType = "UNAUTHORIZED"

	// Configuration (rejected at creation, never partially applied)
	ErrInvalidCapConfiguration ErrorType = "INVALID_CAP_CONFIGURATION"
	ErrInvalidTimeWindow       ErrorType = "INVALID_TIME_WINDOW"

	// State (sale window / cap violations, rejected before any mutation)
	ErrSaleNotActive  ErrorType = "SALE_NOT_ACTIVE"
	ErrHardCapReached ErrorType = "HARD_CAP_REACHED"

	// Gate rejections (transfer denied, no mutation, no retry implied)
	ErrAmountOutOfRange          ErrorType = "AMOUNT_OUT_OF_RANGE"
	ErrOutsideTradingWindow      ErrorType = "OUTSIDE_TRADING_WINDOW"
	ErrSenderNotWhitelisted      ErrorType = "SENDER_NOT_WHITELISTED"
	ErrMissingRequiredCredential ErrorType = "MISSING_REQUIRED_CREDENTIAL"

	// Resource
	ErrInsufficientFunds  ErrorType = "INSUFFICIENT_FUNDS"
	ErrAlreadyInitialized ErrorType = "ALREADY_INITIALIZED"
	ErrAlreadyWhitelisted ErrorType = "ALREADY_WHITELISTED"
	ErrNotWhitelisted     ErrorType = "NOT_WHITELISTED"
	ErrFeePaymentFailed   ErrorType = "FEE_PAYMENT_FAILED"

	// Arithmetic (always fatal to the operation, never saturated)
	ErrArithmeticOverflow ErrorType = "ARITHMETIC_OVERFLOW"

	// Transport / infrastructure
	ErrInvalidRequest ErrorType = "INVALID_REQUEST"
	ErrNotFound       ErrorType = "NOT_FOUND"
	ErrReadOnly       ErrorType = "READ_ONLY"
	ErrInternal       ErrorType = "INTERNAL_ERROR"
)

// AppError is the standard error struct for the application. Every failed
// settlement step surfaces as one of these: a discriminated reason code plus
// the record identifiers involved.
type AppError struct {
	Type       ErrorType              `json:"code"`
	Message    string                 `json:"message"`
	Records    map[string]string      `json:"records,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

// Newf is New with formatting; the common path for state and gate errors.
func Newf(errType ErrorType, format string, args ...interface{}) *AppError {
	return New(errType, fmt.Sprintf(format, args...), nil)
}

// WithRecord attaches a record identifier involved in the failed step.
func (e *AppError) WithRecord(key, value string) *AppError {
	if e.Records == nil {
		e.Records = make(map[string]string)
	}
	e.Records[key] = value
	return e
}

// Is makes errors.Is work on the reason code, ignoring message and records.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Type == e.Type
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

// IsGateRejection reports whether the error is one of the four transfer-gate
// reason codes. Gate rejections are expected traffic, not faults.
func IsGateRejection(err error) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	switch appErr.Type {
	case ErrAmountOutOfRange, ErrOutsideTradingWindow, ErrSenderNotWhitelisted, ErrMissingRequiredCredential:
		return true
	default:
		return false
	}
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrInvalidRequest, ErrInvalidCapConfiguration, ErrInvalidTimeWindow:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrAmountOutOfRange, ErrOutsideTradingWindow, ErrSenderNotWhitelisted, ErrMissingRequiredCredential, ErrReadOnly:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrSaleNotActive, ErrHardCapReached, ErrAlreadyInitialized, ErrAlreadyWhitelisted, ErrNotWhitelisted:
		return http.StatusConflict
	case ErrInsufficientFunds, ErrFeePaymentFailed, ErrArithmeticOverflow:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrSaleNotActive:
		return "Check the sale window before submitting."
	case ErrHardCapReached:
		return "Reduce the amount; requests past the hard cap are rejected in full."
	case ErrInsufficientFunds, ErrFeePaymentFailed:
		return "Fund the paying account and resubmit."
	case ErrAlreadyWhitelisted, ErrNotWhitelisted:
		return "Query membership before mutating the allow list."
	case ErrUnauthorized:
		return "Only the recorded owner may perform this operation."
	default:
		return ""
	}
}
