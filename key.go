package getch

import (
	"fmt"
	"unicode"
)

// Code identifies the kind of key a Key value represents. The set is closed;
// adding a key is a source-level change to the decoder tables.
type Code int

const (
	// KeyChar is a printable character; the character is in Key.Rune.
	KeyChar Code = iota
	// KeyCtrl is a Ctrl+letter combination; the letter is in Key.Rune.
	KeyCtrl
	// KeyAlt is an Alt+character combination; the character is in Key.Rune.
	KeyAlt

	KeyEnter
	KeyTab
	KeyBackspace
	KeyEsc

	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyBackTab

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// KeyEOF signals that the input stream is closed. It is a legitimate
	// key value, not an error; the caller should stop reading.
	KeyEOF
)

// Key is one decoded input event. Values are comparable; Rune is only
// meaningful for KeyChar, KeyCtrl and KeyAlt.
type Key struct {
	Code Code
	Rune rune
}

// Char returns the key for a printable character.
func Char(r rune) Key { return Key{Code: KeyChar, Rune: r} }

// Ctrl returns the key for Ctrl+r.
func Ctrl(r rune) Key { return Key{Code: KeyCtrl, Rune: r} }

// Alt returns the key for Alt+r.
func Alt(r rune) Key { return Key{Code: KeyAlt, Rune: r} }

// F returns the function key Fn for n in 1..12.
func F(n int) Key {
	if n < 1 || n > 12 {
		return Key{}
	}
	return Key{Code: KeyF1 + Code(n-1)}
}

var codeNames = map[Code]string{
	KeyEnter:     "Enter",
	KeyTab:       "Tab",
	KeyBackspace: "Backspace",
	KeyEsc:       "Escape",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyRight:     "Right",
	KeyLeft:      "Left",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyInsert:    "Insert",
	KeyDelete:    "Delete",
	KeyBackTab:   "S-Tab",
	KeyEOF:       "EOF",
}

// String renders the key in display notation: "a", "^C", "M-a", "F5", "Up".
func (k Key) String() string {
	switch k.Code {
	case KeyChar:
		return string(k.Rune)
	case KeyCtrl:
		return "^" + string(unicode.ToUpper(k.Rune))
	case KeyAlt:
		return "M-" + string(k.Rune)
	}
	if k.Code >= KeyF1 && k.Code <= KeyF12 {
		return fmt.Sprintf("F%d", int(k.Code-KeyF1)+1)
	}
	if name, ok := codeNames[k.Code]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", int(k.Code))
}
