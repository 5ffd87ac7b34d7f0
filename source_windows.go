//go:build windows

package getch

import (
	"fmt"
	"os"
	"time"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	procReadConsoleInputW = kernel32.NewProc("ReadConsoleInputW")
)

const keyEventType = 0x0001

// Control key state flags of a KEY_EVENT_RECORD.
const (
	rightAltPressed  = 0x0001
	leftAltPressed   = 0x0002
	rightCtrlPressed = 0x0004
	leftCtrlPressed  = 0x0008
)

// Virtual key codes for keys that carry no character.
const (
	vkPrior  = 0x21 // Page Up
	vkNext   = 0x22 // Page Down
	vkEnd    = 0x23
	vkHome   = 0x24
	vkLeft   = 0x25
	vkUp     = 0x26
	vkRight  = 0x27
	vkDown   = 0x28
	vkInsert = 0x2D
	vkDelete = 0x2E
	vkF1     = 0x70
	vkF12    = 0x7B
)

var vkKeys = map[uint16]Key{
	vkPrior:  {Code: KeyPageUp},
	vkNext:   {Code: KeyPageDown},
	vkEnd:    {Code: KeyEnd},
	vkHome:   {Code: KeyHome},
	vkLeft:   {Code: KeyLeft},
	vkUp:     {Code: KeyUp},
	vkRight:  {Code: KeyRight},
	vkDown:   {Code: KeyDown},
	vkInsert: {Code: KeyInsert},
	vkDelete: {Code: KeyDelete},
}

// inputRecord mirrors INPUT_RECORD with the KEY_EVENT_RECORD member of the
// union laid out inline.
type inputRecord struct {
	eventType       uint16
	_               uint16
	keyDown         int32
	repeatCount     uint16
	virtualKeyCode  uint16
	virtualScanCode uint16
	unicodeChar     uint16
	controlKeyState uint32
}

// conSource reads structured key events from a console input handle. The
// console delivers (virtual key, modifiers, character) records directly, so
// no escape-sequence decoding is involved.
type conSource struct {
	handle   windows.Handle
	orig     uint32
	restored bool
	highSurr uint16 // pending high surrogate of a UTF-16 pair
}

func openSource(f *os.File) (keySource, error) {
	h := windows.Handle(f.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTerminalUnavailable, err)
	}
	raw := mode &^ uint32(windows.ENABLE_ECHO_INPUT|windows.ENABLE_LINE_INPUT|windows.ENABLE_PROCESSED_INPUT)
	if err := windows.SetConsoleMode(h, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTerminalUnavailable, err)
	}
	return &conSource{handle: h, orig: mode}, nil
}

// ReadKey blocks on ReadConsoleInput until a key-down record resolves to a
// key. The escape timeout is unused: console records are already complete
// events. Step-2 short circuit of the decode algorithm.
func (c *conSource) ReadKey(_ time.Duration) (Key, error) {
	var (
		rec inputRecord
		n   uint32
	)
	for {
		r1, _, e1 := procReadConsoleInputW.Call(
			uintptr(c.handle),
			uintptr(unsafe.Pointer(&rec)),
			1,
			uintptr(unsafe.Pointer(&n)),
		)
		if r1 == 0 {
			return Key{}, fmt.Errorf("getch: read console input: %w", e1)
		}
		if n == 0 {
			return Key{Code: KeyEOF}, nil
		}
		if rec.eventType != keyEventType || rec.keyDown == 0 {
			continue
		}
		if k, ok := c.translate(&rec); ok {
			return k, nil
		}
	}
}

// translate maps one key-down record to a Key. ok is false for records that
// produce no key on their own (modifier presses, high surrogates).
func (c *conSource) translate(rec *inputRecord) (Key, bool) {
	if k, ok := vkKeys[rec.virtualKeyCode]; ok {
		return k, true
	}
	if rec.virtualKeyCode >= vkF1 && rec.virtualKeyCode <= vkF12 {
		return F(int(rec.virtualKeyCode-vkF1) + 1), true
	}

	ch := rec.unicodeChar
	if ch == 0 {
		return Key{}, false
	}

	// Surrogate pairs arrive as two consecutive key-down records.
	if utf16.IsSurrogate(rune(ch)) {
		if ch >= 0xD800 && ch <= 0xDBFF {
			c.highSurr = ch
			return Key{}, false
		}
		if c.highSurr != 0 {
			r := utf16.DecodeRune(rune(c.highSurr), rune(ch))
			c.highSurr = 0
			return Char(r), true
		}
		return Key{}, false
	}
	c.highSurr = 0

	switch ch {
	case 0x0D, 0x0A:
		return Key{Code: KeyEnter}, true
	case 0x09:
		return Key{Code: KeyTab}, true
	case 0x08, 0x7F:
		return Key{Code: KeyBackspace}, true
	case 0x1B:
		return Key{Code: KeyEsc}, true
	}
	if ch <= 0x1A {
		return Ctrl(rune(ch - 0x01 + 'a')), true
	}
	if ch <= 0x1F {
		return Ctrl(rune(ch - 0x1C + '4')), true
	}
	alt := rec.controlKeyState&(leftAltPressed|rightAltPressed) != 0
	ctrl := rec.controlKeyState&(leftCtrlPressed|rightCtrlPressed) != 0
	// Ctrl+Alt together is AltGr producing a plain character.
	if alt && !ctrl {
		return Alt(rune(ch)), true
	}
	return Char(rune(ch)), true
}

func (c *conSource) Restore() error {
	if c.restored {
		return nil
	}
	c.restored = true
	if err := windows.SetConsoleMode(c.handle, c.orig); err != nil {
		return fmt.Errorf("getch: restore console mode: %w", err)
	}
	return nil
}

func (c *conSource) SetEcho(on bool) error {
	var mode uint32
	if err := windows.GetConsoleMode(c.handle, &mode); err != nil {
		return fmt.Errorf("getch: query console mode: %w", err)
	}
	if on {
		mode |= windows.ENABLE_ECHO_INPUT
	} else {
		mode &^= windows.ENABLE_ECHO_INPUT
	}
	if err := windows.SetConsoleMode(c.handle, mode); err != nil {
		return fmt.Errorf("getch: set console mode: %w", err)
	}
	return nil
}
