// Package ierr defines the four error kinds the reconciliation engine
// distinguishes (see the error handling design): callers switch on these
// to decide whether to drop a message, retry it, or surface it.
package ierr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed, so a caller can decide whether
// to drop, retry, or log-and-continue without string-matching error text.
type Kind int

const (
	// Ignorable marks a malformed queue payload missing required fields.
	// The caller drops the message with a warning; it is never re-queued.
	Ignorable Kind = iota
	// Processing marks a semantically invalid claim (no orcidid, wrong
	// shape). Fatal for that message; the caller must log it.
	Processing
	// TransientIO marks an external service returning non-200 or a
	// network failure. Retried with backoff inside check-updates;
	// elsewhere surfaced to the caller, which decides.
	TransientIO
	// Data marks an invariant violation detected at write time (e.g. a
	// claim index landing at or past the author length). Logged at error
	// level and the message is dropped rather than corrupting state.
	Data
)

func (k Kind) String() string {
	switch k {
	case Ignorable:
		return "ignorable"
	case Processing:
		return "processing"
	case TransientIO:
		return "transient_io"
	case Data:
		return "data"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind so callers can branch on
// errors.As without parsing message text.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
