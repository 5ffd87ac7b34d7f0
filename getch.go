// Package getch provides blocking, unbuffered capture of single keystrokes
// from a terminal. It handles VT100/ANSI escape sequences and UTF-8 input on
// Unix-like systems and structured console key events on Windows, and
// normalizes both into one portable Key type.
//
// Opening a session puts the terminal into raw mode (no line buffering, no
// local echo, no signal generation from control characters) and captures the
// original configuration; Close restores it exactly. Each Getch call blocks
// until exactly one logical key is resolved.
package getch

import (
	"os"
	"sync"
	"time"
)

// DefaultEscTimeout is how long the decoder waits after a lone ESC byte to
// decide whether it starts an escape sequence or is a bare Escape press.
// Long enough to catch a fast-typed sequence, short enough not to add
// perceptible latency to an Escape press.
const DefaultEscTimeout = 50 * time.Millisecond

// keySource is the platform input capability: a byte-stream decoder on
// Unix-like systems, a structured console-event reader on Windows. It also
// owns the terminal mode it changed at open time.
type keySource interface {
	// ReadKey blocks until one key is resolved. escTimeout bounds escape
	// disambiguation on byte-stream platforms.
	ReadKey(escTimeout time.Duration) (Key, error)
	// Restore puts the terminal back into the exact configuration captured
	// at open time. Idempotent.
	Restore() error
	// SetEcho toggles local echo without touching the rest of the mode.
	SetEcho(on bool) error
}

// Getch is a raw-input session on a terminal. It is created with the
// terminal in raw mode and must be closed to restore the original mode.
//
// Terminal mode is process-global state: keep at most one live session per
// terminal. Reads are not safe for concurrent use; Close may be called from
// another goroutine (for example a signal handler) while a read is blocked.
type Getch struct {
	mu         sync.Mutex
	src        keySource
	escTimeout time.Duration
	debugFn    func(string)
	closed     bool
}

// Options configures a session. The zero value is usable.
type Options struct {
	// Input is the terminal device to read from (default: os.Stdin).
	Input *os.File

	// EscTimeout overrides DefaultEscTimeout.
	EscTimeout time.Duration

	// DebugFn is called with debug messages (optional).
	DebugFn func(string)
}

// New opens a raw-input session on the process's controlling terminal.
// It returns ErrTerminalUnavailable if stdin is not a terminal.
func New() (*Getch, error) {
	return NewWithOptions(Options{})
}

// NewWithOptions opens a raw-input session with explicit options.
func NewWithOptions(opts Options) (*Getch, error) {
	in := opts.Input
	if in == nil {
		in = os.Stdin
	}
	escTimeout := opts.EscTimeout
	if escTimeout <= 0 {
		escTimeout = DefaultEscTimeout
	}

	src, err := openSource(in)
	if err != nil {
		return nil, err
	}

	g := &Getch{
		src:        src,
		escTimeout: escTimeout,
		debugFn:    opts.DebugFn,
	}
	g.debug("terminal set to raw mode")
	return g, nil
}

// Getch blocks until exactly one key is resolved and returns it. Stream
// closure is reported as a key with Code KeyEOF, not as an error. An
// *UnknownSequenceError is non-fatal; the caller may read again.
func (g *Getch) Getch() (Key, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return Key{}, ErrClosed
	}
	src := g.src
	escTimeout := g.escTimeout
	g.mu.Unlock()

	k, err := src.ReadKey(escTimeout)
	if err != nil {
		g.debug("read error: " + err.Error())
		return Key{}, err
	}
	g.debug("key: " + k.String())
	return k, nil
}

// Close restores the original terminal configuration. It is idempotent and
// never panics; a restore failure is returned but the session is considered
// closed regardless, so the process can continue to exit.
func (g *Getch) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	err := g.src.Restore()
	if err != nil {
		g.debug("restore failed: " + err.Error())
		return err
	}
	g.debug("terminal restored to original mode")
	return nil
}

// EnableEcho turns local echo back on while the session stays live.
func (g *Getch) EnableEcho() error {
	return g.setEcho(true)
}

// DisableEcho turns local echo off.
func (g *Getch) DisableEcho() error {
	return g.setEcho(false)
}

func (g *Getch) setEcho(on bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	return g.src.SetEcho(on)
}

func (g *Getch) debug(msg string) {
	if g.debugFn != nil {
		g.debugFn(msg)
	}
}
