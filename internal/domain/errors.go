package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrorKind is the machine-distinguishable category of a request rejection
type ErrorKind string

const (
	KindInvalidInvestment       ErrorKind = "INVALID_INVESTMENT"
	KindMinimumInvestmentNotMet ErrorKind = "MINIMUM_INVESTMENT_NOT_MET"
	KindInsufficientUnits       ErrorKind = "INSUFFICIENT_UNITS"
	KindNotFound                ErrorKind = "NOT_FOUND"
	KindStorageFailure          ErrorKind = "STORAGE_FAILURE"
)

// Error is a domain error carrying its kind and optional context.
// Two errors match under errors.Is when their kinds are equal, so the sentinels below
// can be used to test any error of the same kind.
type Error struct {
	Kind      ErrorKind
	Message   string
	Minimum   decimal.NullDecimal // MinimumInvestmentNotMet only
	Available decimal.NullDecimal // InsufficientUnits only
	retryable bool
	cause     error
}

var (
	ErrInvalidInvestment       = &Error{Kind: KindInvalidInvestment}
	ErrMinimumInvestmentNotMet = &Error{Kind: KindMinimumInvestmentNotMet}
	ErrInsufficientUnits       = &Error{Kind: KindInsufficientUnits}
	ErrNotFound                = &Error{Kind: KindNotFound}
	ErrStorageFailure          = &Error{Kind: KindStorageFailure}
)

// ErrConflict marks a storage error that may succeed if the caller retries
// (unique violation on concurrent insert, serialization failure, lock contention)
var ErrConflict = errors.New("storage conflict")

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = defaultMessage(e.Kind)
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Retryable reports whether the caller may retry the same request
func (e *Error) Retryable() bool {
	return e.retryable
}

func defaultMessage(kind ErrorKind) string {
	switch kind {
	case KindInvalidInvestment:
		return "invalid investment"
	case KindMinimumInvestmentNotMet:
		return "minimum investment not met"
	case KindInsufficientUnits:
		return "insufficient units"
	case KindNotFound:
		return "not found"
	case KindStorageFailure:
		return "storage failure"
	default:
		return "unknown error"
	}
}

// InvalidInvestment rejects an unknown or inactive product, an unknown holding, or a non-positive quantity
func InvalidInvestment(message string) error {
	return &Error{Kind: KindInvalidInvestment, Message: message}
}

// MinimumInvestmentNotMet rejects a buy whose amount is below the product minimum
func MinimumInvestmentNotMet(minimum decimal.Decimal) error {
	return &Error{
		Kind:    KindMinimumInvestmentNotMet,
		Message: "minimum investment required: " + minimum.String(),
		Minimum: decimal.NewNullDecimal(minimum),
	}
}

// InsufficientUnits rejects a sell larger than the holding
func InsufficientUnits(available decimal.Decimal) error {
	return &Error{
		Kind:      KindInsufficientUnits,
		Message:   "not enough units to sell, available: " + available.String(),
		Available: decimal.NewNullDecimal(available),
	}
}

// NotFound reports a missing entity on a read path
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// StorageFailure wraps a persistence error. Conflicts (see ErrConflict) are retryable.
func StorageFailure(cause error) error {
	return &Error{
		Kind:      KindStorageFailure,
		Message:   "storage failure",
		retryable: errors.Is(cause, ErrConflict),
		cause:     cause,
	}
}

// KindOf returns the kind of the first domain error in err's chain, or "" when there is none
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// AsError returns the first domain error in err's chain
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
