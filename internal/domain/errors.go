package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable classification shown to API callers.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation_error"
	KindCapacityExceeded   ErrorKind = "capacity_exceeded"
	KindNotFound           ErrorKind = "not_found"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindTimeout            ErrorKind = "timeout"
	KindInvalidResponse    ErrorKind = "invalid_response"
	KindTranslationFailed  ErrorKind = "translation_failed"
	KindStorageUnavailable ErrorKind = "storage_unavailable"
	KindCorruptData        ErrorKind = "corrupt_data"
	KindPermissionDenied   ErrorKind = "permission_denied"
	KindBusy               ErrorKind = "busy"
	KindSetupRequired      ErrorKind = "setup_required"
	KindNoContacts         ErrorKind = "no_contacts"
	KindAlertFailed        ErrorKind = "alert_failed"
	KindInternal           ErrorKind = "internal"
)

// Error is a classified error. Op names the failing operation, Err the cause.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of Op or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrCapacityExceeded   = &Error{Kind: KindCapacityExceeded}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable}
	ErrTimeout            = &Error{Kind: KindTimeout}
	ErrInvalidResponse    = &Error{Kind: KindInvalidResponse}
	ErrTranslationFailed  = &Error{Kind: KindTranslationFailed}
	ErrStorageUnavailable = &Error{Kind: KindStorageUnavailable}
	ErrCorruptData        = &Error{Kind: KindCorruptData}
	ErrPermissionDenied   = &Error{Kind: KindPermissionDenied}
	ErrBusy               = &Error{Kind: KindBusy}
	ErrSetupRequired      = &Error{Kind: KindSetupRequired}
	ErrNoContacts         = &Error{Kind: KindNoContacts}
	ErrAlertFailed        = &Error{Kind: KindAlertFailed}
)

// E builds a classified error.
func E(kind ErrorKind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Ef builds a classified error with a formatted message and no cause.
func Ef(kind ErrorKind, op string, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// RemoteError classifies a transport failure from the advice service:
// deadline overruns become Timeout, everything else ServiceUnavailable.
// Already-classified errors pass through.
func RemoteError(op string, err error) error {
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	var te interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &te) && te.Timeout()) {
		return E(KindTimeout, op, err)
	}
	return E(KindServiceUnavailable, op, err)
}

// KindOf returns the kind of the outermost classified error in the chain,
// or KindInternal when err carries none.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

var userMessages = map[ErrorKind]string{
	KindValidation:         "Please check the information you entered.",
	KindCapacityExceeded:   "You can have at most 3 emergency contacts. Remove one before adding another.",
	KindNotFound:           "The requested item could not be found.",
	KindServiceUnavailable: "Could not get AI assistance. Please try again or use the Extreme Emergency button if needed.",
	KindTimeout:            "The AI assistant took too long to answer. Please try again or use the Extreme Emergency button if needed.",
	KindInvalidResponse:    "Could not get AI assistance. Please try again or use the Extreme Emergency button if needed.",
	KindTranslationFailed:  "Could not translate advice. Showing in English.",
	KindStorageUnavailable: "Could not save or load your profile.",
	KindCorruptData:        "Could not load your profile. Please set it up again.",
	KindPermissionDenied:   "Permission denied. Please allow access and try again.",
	KindBusy:               "An emergency report is already being processed.",
	KindSetupRequired:      "Please set up your emergency profile before using this feature.",
	KindNoContacts:         "Please add emergency contacts to your profile.",
	KindAlertFailed:        "Failed to send emergency alert. Please try again.",
	KindInternal:           "Something went wrong. Please try again.",
}

// UserMessage returns the fixed user-facing text for a kind.
func UserMessage(kind ErrorKind) string {
	if msg, ok := userMessages[kind]; ok {
		return msg
	}
	return userMessages[KindInternal]
}
