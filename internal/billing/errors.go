package billing

import (
	"errors"
	"fmt"
)

// Kind classifies a billing error so HTTP handlers can map it to a
// status code without inspecting messages.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindGateway
	KindSignature
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// GatewayErr wraps a failed or timed-out Stripe call. The full cause is
// logged by the caller; the message here is what the user may see.
func GatewayErr(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindGateway, Message: fmt.Sprintf(format, args...), Err: err}
}

func SignatureErr(err error) *Error {
	return &Error{Kind: KindSignature, Message: "webhook signature verification failed", Err: err}
}

// KindOf returns the kind of err, or 0 for non-billing errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsGateway(err error) bool    { return KindOf(err) == KindGateway }
func IsSignature(err error) bool  { return KindOf(err) == KindSignature }
