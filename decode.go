package getch

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
	"unicode/utf8"
)

// byteSource supplies raw input bytes to the decoder, one at a time.
// ReadByte blocks until a byte is available and returns io.EOF when the
// stream is closed (including the zero-length-read case). ReadByteTimeout is
// used while disambiguating escape sequences; ok is false on timeout.
type byteSource interface {
	ReadByte() (byte, error)
	ReadByteTimeout(d time.Duration) (b byte, ok bool, err error)
}

// maxSeqLen bounds CSI accumulation so a stream of parameter bytes that
// never terminates is reported as unknown instead of read forever.
const maxSeqLen = 32

// csiFinalKeys maps parameterless CSI final bytes to keys.
var csiFinalKeys = map[byte]Key{
	'A': {Code: KeyUp},
	'B': {Code: KeyDown},
	'C': {Code: KeyRight},
	'D': {Code: KeyLeft},
	'H': {Code: KeyHome},
	'F': {Code: KeyEnd},
	'Z': {Code: KeyBackTab},
}

// csiTildeKeys maps "ESC [ <n> ~" codes to keys. The F-key numbering has
// gaps at 16 and 22 per common terminal convention.
var csiTildeKeys = map[int]Key{
	1:  {Code: KeyHome},
	2:  {Code: KeyInsert},
	3:  {Code: KeyDelete},
	4:  {Code: KeyEnd},
	5:  {Code: KeyPageUp},
	6:  {Code: KeyPageDown},
	7:  {Code: KeyHome},
	8:  {Code: KeyEnd},
	11: {Code: KeyF1},
	12: {Code: KeyF2},
	13: {Code: KeyF3},
	14: {Code: KeyF4},
	15: {Code: KeyF5},
	17: {Code: KeyF6},
	18: {Code: KeyF7},
	19: {Code: KeyF8},
	20: {Code: KeyF9},
	21: {Code: KeyF10},
	23: {Code: KeyF11},
	24: {Code: KeyF12},
}

// ss3Keys maps "ESC O <b>" finals to keys (F1-F4 everywhere, arrows and
// Home/End when the terminal is in application cursor mode).
var ss3Keys = map[byte]Key{
	'P': {Code: KeyF1},
	'Q': {Code: KeyF2},
	'R': {Code: KeyF3},
	'S': {Code: KeyF4},
	'A': {Code: KeyUp},
	'B': {Code: KeyDown},
	'C': {Code: KeyRight},
	'D': {Code: KeyLeft},
	'H': {Code: KeyHome},
	'F': {Code: KeyEnd},
}

// decodeKey reads exactly one logical key from src. Stream closure yields
// the EOF key, never an error.
func decodeKey(src byteSource, escTimeout time.Duration) (Key, error) {
	b, err := src.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Key{Code: KeyEOF}, nil
		}
		return Key{}, fmt.Errorf("getch: read: %w", err)
	}

	switch {
	case b == 0x1b:
		return decodeEscape(src, escTimeout)
	case b == '\r' || b == '\n':
		return Key{Code: KeyEnter}, nil
	case b == '\t':
		return Key{Code: KeyTab}, nil
	case b == 0x08 || b == 0x7f:
		return Key{Code: KeyBackspace}, nil
	case b == 0x00:
		return Key{Code: KeyEOF}, nil
	case b <= 0x1a:
		return Ctrl(rune(b - 0x01 + 'a')), nil
	case b <= 0x1f:
		// 0x1C-0x1F: Ctrl+4 through Ctrl+7
		return Ctrl(rune(b - 0x1c + '4')), nil
	default:
		r, err := decodeRune(b, src, escTimeout)
		if err != nil {
			return Key{}, err
		}
		return Char(r), nil
	}
}

// decodeEscape resolves a leading ESC byte: a bare Escape press, a CSI or
// SS3 sequence, or Alt+key.
func decodeEscape(src byteSource, escTimeout time.Duration) (Key, error) {
	b, ok, err := src.ReadByteTimeout(escTimeout)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Key{Code: KeyEsc}, nil
		}
		return Key{}, fmt.Errorf("getch: read: %w", err)
	}
	if !ok {
		// Nothing followed within the timeout: a real Escape press.
		return Key{Code: KeyEsc}, nil
	}

	switch b {
	case '[':
		return decodeCSI(src, escTimeout)
	case 'O':
		b2, ok, err := src.ReadByteTimeout(escTimeout)
		if err != nil && !errors.Is(err, io.EOF) {
			return Key{}, fmt.Errorf("getch: read: %w", err)
		}
		if err != nil || !ok {
			return Alt('O'), nil
		}
		if k, found := ss3Keys[b2]; found {
			return k, nil
		}
		return Key{}, &UnknownSequenceError{Seq: []byte{0x1b, 'O', b2}}
	default:
		r, err := decodeRune(b, src, escTimeout)
		if err != nil {
			return Key{}, err
		}
		return Alt(r), nil
	}
}

// decodeCSI accumulates a control sequence after "ESC [" until a final byte
// in 0x40-0x7E arrives, then maps it.
func decodeCSI(src byteSource, escTimeout time.Duration) (Key, error) {
	c, ok, err := src.ReadByteTimeout(escTimeout)
	if err != nil && !errors.Is(err, io.EOF) {
		return Key{}, fmt.Errorf("getch: read: %w", err)
	}
	if err != nil || !ok {
		// "ESC [" with nothing forthcoming: shortest interpretation is a
		// literal bracket typed after Escape, i.e. Alt+[.
		return Alt('['), nil
	}

	// Linux console encodes F1-F5 as "ESC [ [ A".."ESC [ [ E".
	if c == '[' {
		b, ok, err := src.ReadByteTimeout(escTimeout)
		if err != nil && !errors.Is(err, io.EOF) {
			return Key{}, fmt.Errorf("getch: read: %w", err)
		}
		if err != nil || !ok {
			return Key{}, &UnknownSequenceError{Seq: []byte{0x1b, '[', '['}}
		}
		if b >= 'A' && b <= 'E' {
			return F(int(b-'A') + 1), nil
		}
		return Key{}, &UnknownSequenceError{Seq: []byte{0x1b, '[', '[', b}}
	}

	var params []byte
	for {
		if c >= 0x40 && c <= 0x7e {
			return mapCSI(params, c)
		}
		params = append(params, c)
		if len(params) > maxSeqLen {
			return Key{}, &UnknownSequenceError{Seq: csiBytes(params, 0)}
		}
		c, ok, err = src.ReadByteTimeout(escTimeout)
		if err != nil && !errors.Is(err, io.EOF) {
			return Key{}, fmt.Errorf("getch: read: %w", err)
		}
		if err != nil || !ok {
			// Bytes consumed so far no longer have a shorter valid
			// reading; report them and move on.
			return Key{}, &UnknownSequenceError{Seq: csiBytes(params, 0)}
		}
	}
}

// mapCSI maps an accumulated parameter string plus final byte to a key.
func mapCSI(params []byte, final byte) (Key, error) {
	if len(params) == 0 {
		if k, ok := csiFinalKeys[final]; ok {
			return k, nil
		}
		return Key{}, &UnknownSequenceError{Seq: csiBytes(nil, final)}
	}
	if final == '~' {
		n, err := strconv.Atoi(string(params))
		if err == nil {
			if k, ok := csiTildeKeys[n]; ok {
				return k, nil
			}
		}
	}
	return Key{}, &UnknownSequenceError{Seq: csiBytes(params, final)}
}

// csiBytes reconstructs the raw sequence for diagnostics. final of 0 means
// the sequence never terminated.
func csiBytes(params []byte, final byte) []byte {
	seq := append([]byte{0x1b, '['}, params...)
	if final != 0 {
		seq = append(seq, final)
	}
	return seq
}

// decodeRune decodes one UTF-8 character whose lead byte has already been
// read, pulling continuation bytes as needed.
func decodeRune(b byte, src byteSource, escTimeout time.Duration) (rune, error) {
	if b < 0x80 {
		return rune(b), nil
	}

	var cont int
	switch {
	case b >= 0xc0 && b <= 0xdf:
		cont = 1
	case b >= 0xe0 && b <= 0xef:
		cont = 2
	case b >= 0xf0 && b <= 0xf7:
		cont = 3
	default:
		// Bare continuation byte or invalid lead byte.
		return 0, &UnknownSequenceError{Seq: []byte{b}}
	}

	buf := make([]byte, 1, cont+1)
	buf[0] = b
	for i := 0; i < cont; i++ {
		c, ok, err := src.ReadByteTimeout(escTimeout)
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("getch: read: %w", err)
		}
		if err != nil || !ok {
			return 0, &UnknownSequenceError{Seq: buf}
		}
		if c < 0x80 || c > 0xbf {
			return 0, &UnknownSequenceError{Seq: append(buf, c)}
		}
		buf = append(buf, c)
	}

	r, _ := utf8.DecodeRune(buf)
	if r == utf8.RuneError {
		return 0, &UnknownSequenceError{Seq: buf}
	}
	return r, nil
}
