package shell

import "errors"

// Status is the coarse outcome category of a shell operation.
type Status uint8

const (
	// StatusSuccess reports a nil error.
	StatusSuccess Status = iota
	// StatusError covers every failure without a more specific status.
	StatusError
	// StatusOpenWriteHandleFailed means New could not open the writer.
	StatusOpenWriteHandleFailed
	// StatusOpenReadHandleFailed means New could not open the reader after
	// the writer opened.
	StatusOpenReadHandleFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusOpenWriteHandleFailed:
		return "open write handle failed"
	case StatusOpenReadHandleFailed:
		return "open read handle failed"
	default:
		return "unknown"
	}
}

var (
	// ErrShell is the generic failure. Every error below except the two
	// handle errors wraps it.
	ErrShell = errors.New("shell: error")

	ErrOpenWriteHandle = errors.New("shell: open write handle failed")
	ErrOpenReadHandle  = errors.New("shell: open read handle failed")

	ErrNilCommand       = wrap("nil command")
	ErrInvalidCommand   = wrap("invalid command")
	ErrDuplicateCommand = wrap("duplicate command")
	ErrCommandNotFound  = wrap("command not registered")
	ErrCommandLinked    = wrap("command registered elsewhere")
	ErrInvalidConfig    = wrap("invalid config")
	ErrMode             = wrap("operation not valid in this mode")
	ErrExited           = wrap("exited")
	ErrClosed           = wrap("closed")
)

type shellError struct{ msg string }

func (e *shellError) Error() string { return "shell: " + e.msg }

func (e *shellError) Unwrap() error { return ErrShell }

func wrap(msg string) error { return &shellError{msg: msg} }

// StatusOf maps an error returned by this package to a Status.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrOpenWriteHandle):
		return StatusOpenWriteHandleFailed
	case errors.Is(err, ErrOpenReadHandle):
		return StatusOpenReadHandleFailed
	default:
		return StatusError
	}
}
