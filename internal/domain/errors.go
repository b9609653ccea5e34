package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures so the command layer can pick a user-facing message.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidCredential
	KindCredentialNotSet
	KindResourceNotFound
	KindEmptyResult
	KindUpstreamUnavailable
	KindInvalidInteraction
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredential:
		return "invalid_credential"
	case KindCredentialNotSet:
		return "credential_not_set"
	case KindResourceNotFound:
		return "resource_not_found"
	case KindEmptyResult:
		return "empty_result"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindInvalidInteraction:
		return "invalid_interaction"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Msg is safe to show to end users.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NewError returns a classified error with a user-facing message.
func NewError(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// WrapError classifies err without discarding it.
func WrapError(kind Kind, err error, msg string) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the user-facing message of the first *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
