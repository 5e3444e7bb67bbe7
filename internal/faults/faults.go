// Package faults defines the closed set of failure kinds surfaced by the
// planning and insights operations. Every fault carries a stable
// machine-readable kind and a human message; handlers map kinds to HTTP
// status codes in one place.
package faults

import (
	"errors"
	"fmt"
)

type Kind string

const (
	InputValidation     Kind = "INPUT_VALIDATION"
	ProviderUnavailable Kind = "PROVIDER_UNAVAILABLE"
	ProviderRejected    Kind = "PROVIDER_REJECTED"
	NotFound            Kind = "NOT_FOUND"
)

type Fault struct {
	Kind    Kind
	Message string
	Cause   error
}

func (f *Fault) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error { return f.Cause }

func New(kind Kind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, cause error, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf reports the fault kind of err, or "" if err is not a Fault.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// IsKind reports whether err is a Fault of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
