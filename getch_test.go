package getch

import (
	"errors"
	"testing"
	"time"
)

// fakeKeySource hands out a fixed list of keys, then EOF.
type fakeKeySource struct {
	keys     []Key
	restores int
	echoSet  []bool
}

func (s *fakeKeySource) ReadKey(time.Duration) (Key, error) {
	if len(s.keys) == 0 {
		return Key{Code: KeyEOF}, nil
	}
	k := s.keys[0]
	s.keys = s.keys[1:]
	return k, nil
}

func (s *fakeKeySource) Restore() error {
	s.restores++
	return nil
}

func (s *fakeKeySource) SetEcho(on bool) error {
	s.echoSet = append(s.echoSet, on)
	return nil
}

func newTestGetch(src keySource) *Getch {
	return &Getch{src: src, escTimeout: DefaultEscTimeout}
}

func TestGetchOrderAndEOF(t *testing.T) {
	src := &fakeKeySource{keys: []Key{Char('a'), {Code: KeyUp}, Ctrl('c')}}
	g := newTestGetch(src)

	want := []Key{Char('a'), {Code: KeyUp}, Ctrl('c'), {Code: KeyEOF}}
	for i, w := range want {
		key, err := g.Getch()
		if err != nil {
			t.Fatalf("Getch %d: %v", i, err)
		}
		if key != w {
			t.Errorf("Getch %d = %v, want %v", i, key, w)
		}
	}
}

func TestCloseIdempotent(t *testing.T) {
	src := &fakeKeySource{}
	g := newTestGetch(src)

	if err := g.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if src.restores != 1 {
		t.Errorf("restores = %d, want 1", src.restores)
	}
}

func TestReadAfterClose(t *testing.T) {
	g := newTestGetch(&fakeKeySource{keys: []Key{Char('a')}})
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := g.Getch(); !errors.Is(err, ErrClosed) {
		t.Errorf("Getch after Close err = %v, want ErrClosed", err)
	}
	if err := g.EnableEcho(); !errors.Is(err, ErrClosed) {
		t.Errorf("EnableEcho after Close err = %v, want ErrClosed", err)
	}
}

func TestEchoToggle(t *testing.T) {
	src := &fakeKeySource{}
	g := newTestGetch(src)

	if err := g.DisableEcho(); err != nil {
		t.Fatalf("DisableEcho: %v", err)
	}
	if err := g.EnableEcho(); err != nil {
		t.Fatalf("EnableEcho: %v", err)
	}
	if len(src.echoSet) != 2 || src.echoSet[0] || !src.echoSet[1] {
		t.Errorf("echoSet = %v, want [false true]", src.echoSet)
	}
}

func TestDebugCallback(t *testing.T) {
	var msgs []string
	src := &fakeKeySource{keys: []Key{Char('a')}}
	g := newTestGetch(src)
	g.debugFn = func(msg string) { msgs = append(msgs, msg) }

	if _, err := g.Getch(); err != nil {
		t.Fatalf("Getch: %v", err)
	}
	if len(msgs) == 0 {
		t.Error("debug callback not invoked")
	}
}
