package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrWizardNotFound is returned by repositories when no row matches an id.
	ErrWizardNotFound = errors.New("wizard not found")

	// ErrNoAttachment is returned when a wizard exists but has no image.
	ErrNoAttachment = errors.New("wizard has no image")
)

// Kind is the closed set of failure classes surfaced to the boundary layer.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindBadRequest
	KindStorageIO
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindStorageIO:
		return "storage_io"
	case KindPersistence:
		return "persistence"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a classified failure. Op names the failing operation, Err holds
// the underlying cause (or a caller-authored message for bad requests).
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound wraps cause (usually ErrWizardNotFound or ErrNoAttachment).
func NotFound(op string, cause error) *Error {
	if cause == nil {
		cause = ErrWizardNotFound
	}
	return &Error{Kind: KindNotFound, Op: op, Err: cause}
}

func BadRequest(op, msg string) *Error {
	return &Error{Kind: KindBadRequest, Op: op, Err: errors.New(msg)}
}

func StorageIO(op string, err error) *Error {
	return &Error{Kind: KindStorageIO, Op: op, Err: err}
}

func Persistence(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Op: op, Err: err}
}

// KindOf classifies err. Errors that were never classified are treated as
// persistence failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// Message returns the caller-facing message of a bad request, without the
// operation prefix.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return ""
}
