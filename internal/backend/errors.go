package backend

import (
	"errors"
	"fmt"
)

// Kind partitions backend call failures by whether a response arrived at all.
type Kind string

const (
	// KindUnreachable means the request produced no response (transport failure).
	KindUnreachable Kind = "unreachable"
	// KindErrorStatus means the backend answered with a non-2xx status.
	KindErrorStatus Kind = "error_status"
)

// Error is one failed backend call. Detail is the raw response body for
// status failures or the transport error description otherwise; the caller
// surfaces it verbatim and never retries.
type Error struct {
	Kind       Kind
	Operation  string
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Kind == KindErrorStatus {
		return fmt.Sprintf("backend %s: status %d: %s", e.Operation, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend %s: %s", e.Operation, e.Detail)
}

// IsUnreachable reports whether err is a transport-level backend failure.
func IsUnreachable(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == KindUnreachable
}

// Detail returns the human detail text of a backend failure, or err.Error()
// when err is not a backend Error.
func Detail(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Detail
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
