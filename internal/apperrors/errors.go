// Package apperrors carries the business error taxonomy for the commerce
// core. Handlers map a Kind to an HTTP status at the boundary instead of
// collapsing everything into 500.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindLineItemNotFound
	KindInsufficientStock
	KindInvalidTransactionState
	KindUnsupportedPaymentMethod
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the Kind of err, or KindInternal when err is not an
// *Error from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Validation(msg string) *Error    { return New(KindValidation, msg) }
func Authorization(msg string) *Error { return New(KindAuthorization, msg) }
func NotFound(msg string) *Error      { return New(KindNotFound, msg) }

func LineItemNotFound(productID, variantID uuid.UUID) *Error {
	return Newf(KindLineItemNotFound, "line item not found: product %s variant %s", productID, variantID)
}

func InsufficientStock(productID uuid.UUID) *Error {
	return Newf(KindInsufficientStock, "insufficient stock for product %s", productID)
}

func InvalidTransactionState(current, attempted string) *Error {
	return Newf(KindInvalidTransactionState, "invalid transaction state transition: %s -> %s", current, attempted)
}

func UnsupportedPaymentMethod(method string) *Error {
	return Newf(KindUnsupportedPaymentMethod, "unsupported payment method: %s", method)
}
