// Package apperror defines the typed errors returned by services and maps
// validator errors into field messages.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuthorization
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	default:
		return "internal"
	}
}

// Error codes surfaced to API clients
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidCoordinates  = "INVALID_COORDINATES"
	CodeInvalidDuration     = "INVALID_DURATION"
	CodeUrgentPermanent     = "URGENT_PERMANENT"
	CodeUrgentQuotaExceeded = "URGENT_QUOTA_EXCEEDED"
	CodeGenderCapsInvalid   = "GENDER_CAPS_INVALID"
	CodeInvalidPricingInput = "INVALID_PRICING_INPUT"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeAlreadyJoined       = "ALREADY_JOINED"
	CodeMeetupFull          = "MEETUP_FULL"
	CodeNotJoined           = "NOT_JOINED"
	CodeMeetupNotFound      = "MEETUP_NOT_FOUND"
	CodeNoticeNotFound      = "NOTICE_NOT_FOUND"
	CodeAdvertNotFound      = "ADVERTISEMENT_NOT_FOUND"
	CodeTemplateNotFound    = "TEMPLATE_NOT_FOUND"
	CodeNotAuthorized       = "NOT_AUTHORIZED"
	CodePaymentRequired     = "PAYMENT_REQUIRED"
	CodePaymentMismatch     = "PAYMENT_AMOUNT_MISMATCH"
	CodeTargetingLocked     = "TARGETING_LOCKED"
	CodeInternal            = "INTERNAL_ERROR"
)

// Error is the error type returned across service boundaries
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []map[string]string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code so sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Validation creates a validation error
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// Conflict creates a state conflict error
func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// NotFound creates a not found error
func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Forbidden creates an authorization error
func Forbidden(message string) *Error {
	return &Error{Kind: KindAuthorization, Code: CodeNotAuthorized, Message: message}
}

// Internal wraps an unexpected failure
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "Internal server error", Err: err}
}

// Sentinels shared by services and handlers
var (
	ErrAlreadyJoined       = Conflict(CodeAlreadyJoined, "Already joined this meetup")
	ErrMeetupFull          = Conflict(CodeMeetupFull, "Meetup is full")
	ErrNotJoined           = Conflict(CodeNotJoined, "Not joined this meetup")
	ErrMeetupNotFound      = NotFound(CodeMeetupNotFound, "Meetup not found")
	ErrNoticeNotFound      = NotFound(CodeNoticeNotFound, "Notice not found")
	ErrAdvertNotFound      = NotFound(CodeAdvertNotFound, "Advertisement not found")
	ErrTemplateNotFound    = NotFound(CodeTemplateNotFound, "Template not found")
	ErrUrgentQuotaExceeded = Conflict(CodeUrgentQuotaExceeded, "Monthly urgent notice limit reached")
	ErrInvalidCoordinates  = Validation(CodeInvalidCoordinates, "Invalid coordinates provided")
)

// As extracts an *Error from err
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal for foreign errors
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf returns the code of err, CodeInternal for foreign errors
func CodeOf(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternal
}
