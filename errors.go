package getch

import (
	"errors"
	"fmt"
)

// ErrTerminalUnavailable is returned by New when the input is not attached
// to a terminal (for example stdin redirected from a file) or the OS call
// to query or set the terminal mode fails. The session is unusable; do not
// attempt reads.
var ErrTerminalUnavailable = errors.New("getch: no terminal attached")

// ErrClosed is returned by reads on a closed session.
var ErrClosed = errors.New("getch: session closed")

// UnknownSequenceError reports consumed input bytes with no key mapping.
// It is non-fatal: the pending bytes are discarded and the caller may simply
// read again.
type UnknownSequenceError struct {
	Seq []byte
}

func (e *UnknownSequenceError) Error() string {
	return fmt.Sprintf("getch: unknown input sequence %q", e.Seq)
}
