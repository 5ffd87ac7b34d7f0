//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package getch

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ttySource reads raw bytes from a terminal fd and owns its mode. The
// original termios is captured exactly once, before any modification, and
// restored verbatim on Restore.
type ttySource struct {
	f    *os.File
	fd   int
	orig *unix.Termios // nil once restored
}

func openSource(f *os.File) (keySource, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrTerminalUnavailable
	}

	orig, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTerminalUnavailable, err)
	}

	raw := *orig
	// No canonical mode, no echo, no signal generation, no extended input
	// processing. Output flags stay untouched so callers can keep printing
	// with plain "\n".
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
	raw.Iflag &^= unix.IXON | unix.ICRNL | unix.BRKINT | unix.INPCK | unix.ISTRIP
	// Read returns as soon as one byte is available, no read timeout.
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTerminalUnavailable, err)
	}

	return &ttySource{f: f, fd: fd, orig: orig}, nil
}

func (t *ttySource) ReadKey(escTimeout time.Duration) (Key, error) {
	return decodeKey(t, escTimeout)
}

// ReadByte blocks until one byte is available. A successful zero-length
// read means the stream is closed and is reported as io.EOF; some platforms
// signal closure this way rather than with an error code.
func (t *ttySource) ReadByte() (byte, error) {
	var buf [1]byte
	for {
		n, err := unix.Read(t.fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, io.EOF
		}
		return buf[0], nil
	}
}

// ReadByteTimeout waits up to d for a byte, reporting ok=false on timeout.
// Interrupted waits resume with the remaining time.
func (t *ttySource) ReadByteTimeout(d time.Duration) (byte, bool, error) {
	deadline := time.Now().Add(d)
	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		tv := unix.NsecToTimeval(remaining.Nanoseconds())

		var fds unix.FdSet
		fds.Zero()
		fds.Set(t.fd)

		n, err := unix.Select(t.fd+1, &fds, nil, nil, &tv)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, false, err
		}
		if n == 0 {
			return 0, false, nil
		}

		b, err := t.ReadByte()
		if err != nil {
			return 0, false, err
		}
		return b, true, nil
	}
}

func (t *ttySource) Restore() error {
	if t.orig == nil {
		return nil
	}
	orig := t.orig
	t.orig = nil
	if err := unix.IoctlSetTermios(t.fd, ioctlWriteTermios, orig); err != nil {
		return fmt.Errorf("getch: restore terminal mode: %w", err)
	}
	return nil
}

func (t *ttySource) SetEcho(on bool) error {
	cur, err := unix.IoctlGetTermios(t.fd, ioctlReadTermios)
	if err != nil {
		return fmt.Errorf("getch: query terminal mode: %w", err)
	}
	if on {
		cur.Lflag |= unix.ECHO
	} else {
		cur.Lflag &^= unix.ECHO
	}
	if err := unix.IoctlSetTermios(t.fd, ioctlWriteTermios, cur); err != nil {
		return fmt.Errorf("getch: set terminal mode: %w", err)
	}
	return nil
}
