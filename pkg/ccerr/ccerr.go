// Package ccerr defines the error kinds used across the orchestrator, so
// that a failure can be converted into the right exit-code and diagnostic at
// the top level without callers having to inspect error strings.
package ccerr

import (
	"fmt"

	"github.com/go-errors/errors"
	"golang.org/x/xerrors"
)

// Kind classifies a failure the way the orchestrator's error handling design
// does: configuration, resource, protocol, privilege, or peer-death.
type Kind int

const (
	// Configuration covers unsupported versions, missing required fields,
	// type mismatches, unknown namespace/mount-flag/capability tokens, and
	// path-length overflows.
	Configuration Kind = iota
	// Resource covers pipe, fork/clone, malloc-equivalent, and file-open
	// failures.
	Resource
	// Protocol covers an unexpected handshake line: wrong prefix, EOF, or
	// over-length.
	Protocol
	// Privilege covers setuid/setgid/setgroups/mount/pivot_root/setns/
	// capability failures.
	Privilege
	// PeerDeath covers observing that the container pid has already been
	// reaped (child_pid < 0) at a point that requires it to be alive.
	PeerDeath
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Resource:
		return "resource"
	case Protocol:
		return "protocol"
	case Privilege:
		return "privilege"
	case PeerDeath:
		return "peer-death"
	default:
		return "unknown"
	}
}

// CodedError attaches a Kind to an underlying error, with a captured frame
// for stack-trace formatting in verbose mode.
type CodedError struct {
	Kind    Kind
	Message string
	frame   xerrors.Frame
}

// New builds a CodedError, capturing the caller's frame.
func New(kind Kind, format string, args ...interface{}) *CodedError {
	return &CodedError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		frame:   xerrors.Caller(1),
	}
}

func (e *CodedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// FormatError implements xerrors.Formatter.
func (e *CodedError) FormatError(p xerrors.Printer) error {
	p.Printf("%s: %s", e.Kind, e.Message)
	e.frame.Format(p)
	return nil
}

// Format implements fmt.Formatter so that %+v prints the frame.
func (e *CodedError) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}

// KindOf reports the Kind of err, if it (or something it wraps) is a
// *CodedError, and false otherwise.
func KindOf(err error) (Kind, bool) {
	var coded *CodedError
	if xerrors.As(err, &coded) {
		return coded.Kind, true
	}
	return 0, false
}

// Wrap attaches a stack trace to err for top-level diagnostic printing,
// mirroring how the rest of this codebase's ancestry wraps errors that
// escape to the outermost caller. Returns nil for a nil err.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, 1)
}
