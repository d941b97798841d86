package menu

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kbfirmware/kbsetup/internal/terminal"
)

// fakeScreen scripts key input and tracks the cursor row the way a real
// terminal would: every newline written moves it down one row.
type fakeScreen struct {
	out  bytes.Buffer
	cols int
	rows int

	keys    []terminal.Key
	readErr error // returned after scripted keys run out

	cursorRow int
	moves     []int // rows passed to SetCursorPos
	hidden    bool
	restored  bool
}

func newFakeScreen(cols, rows int, keys ...terminal.Key) *fakeScreen {
	return &fakeScreen{
		cols:      cols,
		rows:      rows,
		keys:      keys,
		readErr:   errors.New("script exhausted"),
		cursorRow: 1,
	}
}

func (s *fakeScreen) Write(p []byte) (int, error) {
	s.cursorRow += bytes.Count(p, []byte("\n"))
	return s.out.Write(p)
}

func (s *fakeScreen) Size() (int, int) { return s.cols, s.rows }

func (s *fakeScreen) ReadKey() (terminal.Key, error) {
	if len(s.keys) == 0 {
		return terminal.KeyNone, s.readErr
	}
	key := s.keys[0]
	s.keys = s.keys[1:]
	return key, nil
}

func (s *fakeScreen) CursorPos() (int, int, error) { return s.cursorRow, 1, nil }

func (s *fakeScreen) SetCursorPos(row, col int) {
	s.cursorRow = row
	s.moves = append(s.moves, row)
}

func (s *fakeScreen) HideCursor() func() {
	s.hidden = true
	return func() { s.restored = true }
}

func (s *fakeScreen) EnableVT() (func(), error) { return func() {}, nil }

func items(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("item %d", i)
	}
	return out
}

// rows=8 leaves a 5-row viewport after the 3 chrome rows.
const rowsForViewport5 = 8

func TestNextScroll(t *testing.T) {
	tests := []struct {
		name         string
		scroll       int
		focus        int
		itemCount    int
		displayCount int
		want         int
	}{
		{"everything fits", 0, 3, 4, 5, 0},
		{"exact fit", 0, 4, 5, 5, 0},
		{"focus at top", 0, 0, 20, 5, 0},
		{"focus inside window", 0, 2, 20, 5, 0},
		{"focus at bottom edge scrolls down", 0, 4, 20, 5, 1},
		{"end of list", 0, 19, 20, 5, 15},
		{"home from bottom", 15, 0, 20, 5, 0},
		{"scroll up keeps one line of context", 10, 10, 20, 5, 9},
		{"scroll down keeps one line of context", 5, 9, 20, 5, 6},
		{"second item from top", 5, 1, 20, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextScroll(tt.scroll, tt.focus, tt.itemCount, tt.displayCount)
			if got != tt.want {
				t.Errorf("nextScroll(%d, %d, %d, %d) = %d, want %d",
					tt.scroll, tt.focus, tt.itemCount, tt.displayCount, got, tt.want)
			}
		})
	}
}

func TestShowReturnsFocusedItem(t *testing.T) {
	s := newFakeScreen(40, rowsForViewport5, terminal.KeyReturn)
	m := &Menu[string]{Title: "Pick:", Items: items(20), DefaultIndex: 7}

	got, err := m.Show(s)
	if err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if got != "item 7" {
		t.Errorf("Show() = %q, want %q", got, "item 7")
	}
}

func TestShowClampsDefaultIndex(t *testing.T) {
	s := newFakeScreen(40, rowsForViewport5, terminal.KeyReturn)
	m := &Menu[string]{Title: "Pick:", Items: items(5), DefaultIndex: 99}

	got, err := m.Show(s)
	if err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if got != "item 4" {
		t.Errorf("Show() = %q, want %q", got, "item 4")
	}
}

func TestShowNavigation(t *testing.T) {
	tests := []struct {
		name string
		keys []terminal.Key
		want string
	}{
		{"down", []terminal.Key{terminal.KeyDown, terminal.KeyReturn}, "item 1"},
		{"up is clamped at top", []terminal.Key{terminal.KeyUp, terminal.KeyUp, terminal.KeyReturn}, "item 0"},
		{"page down moves by viewport height", []terminal.Key{terminal.KeyPageDown, terminal.KeyReturn}, "item 5"},
		{"page up is clamped at top", []terminal.Key{terminal.KeyDown, terminal.KeyPageUp, terminal.KeyReturn}, "item 0"},
		{"end", []terminal.Key{terminal.KeyEnd, terminal.KeyReturn}, "item 19"},
		{"end then down is clamped", []terminal.Key{terminal.KeyEnd, terminal.KeyDown, terminal.KeyReturn}, "item 19"},
		{"home from end", []terminal.Key{terminal.KeyEnd, terminal.KeyHome, terminal.KeyReturn}, "item 0"},
		{"page down twice", []terminal.Key{terminal.KeyPageDown, terminal.KeyPageDown, terminal.KeyReturn}, "item 10"},
		{"unrecognized key is a no-op", []terminal.Key{terminal.KeyNone, terminal.KeyDown, terminal.KeyReturn}, "item 1"},
		{"left and right are no-ops", []terminal.Key{terminal.KeyLeft, terminal.KeyRight, terminal.KeyReturn}, "item 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeScreen(40, rowsForViewport5, tt.keys...)
			m := &Menu[string]{Title: "Pick:", Items: items(20)}

			got, err := m.Show(s)
			if err != nil {
				t.Fatalf("Show() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Show() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Any long mashing of navigation keys must keep the focus in range; landing
// on Return must still select a real item.
func TestShowFocusStaysInRange(t *testing.T) {
	keys := []terminal.Key{
		terminal.KeyPageDown, terminal.KeyPageDown, terminal.KeyPageDown,
		terminal.KeyPageDown, terminal.KeyPageDown, terminal.KeyPageDown,
		terminal.KeyDown, terminal.KeyDown, terminal.KeyEnd, terminal.KeyDown,
		terminal.KeyPageUp, terminal.KeyPageUp, terminal.KeyPageUp,
		terminal.KeyPageUp, terminal.KeyPageUp, terminal.KeyUp, terminal.KeyUp,
		terminal.KeyHome, terminal.KeyUp, terminal.KeyReturn,
	}
	s := newFakeScreen(40, rowsForViewport5, keys...)
	m := &Menu[string]{Title: "Pick:", Items: items(13)}

	got, err := m.Show(s)
	if err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if got != "item 0" {
		t.Errorf("Show() = %q, want %q", got, "item 0")
	}
}

func TestShowEscapeCancels(t *testing.T) {
	s := newFakeScreen(40, rowsForViewport5, terminal.KeyDown, terminal.KeyEscape)
	m := &Menu[string]{Title: "Pick:", Items: items(20)}

	_, err := m.Show(s)
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("Show() error = %v, want ErrCanceled", err)
	}
}

func TestShowInterruptCancels(t *testing.T) {
	s := newFakeScreen(40, rowsForViewport5)
	s.readErr = terminal.ErrInterrupt
	m := &Menu[string]{Title: "Pick:", Items: items(3)}

	_, err := m.Show(s)
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("Show() error = %v, want ErrCanceled", err)
	}
}

func TestShowEmptyItems(t *testing.T) {
	s := newFakeScreen(40, rowsForViewport5)
	m := &Menu[string]{Title: "Pick:"}

	_, err := m.Show(s)
	if err == nil {
		t.Fatal("Show() with no items should fail")
	}
}

// The cursor must be restored and one blank line printed on every exit path.
func TestShowCleanup(t *testing.T) {
	for _, key := range []terminal.Key{terminal.KeyReturn, terminal.KeyEscape} {
		s := newFakeScreen(40, rowsForViewport5, key)
		m := &Menu[string]{Title: "Pick:", Items: items(3)}
		_, _ = m.Show(s)

		if !s.hidden || !s.restored {
			t.Errorf("key %v: cursor hidden = %v, restored = %v, want both true", key, s.hidden, s.restored)
		}
		if !strings.HasSuffix(s.out.String(), "\n\n") {
			t.Errorf("key %v: output does not end with a blank separator line", key)
		}
	}
}

// After a navigation key, the cursor must move back up to the menu's first
// line so the next frame redraws in place.
func TestShowRedrawsInPlace(t *testing.T) {
	s := newFakeScreen(40, rowsForViewport5, terminal.KeyDown, terminal.KeyReturn)
	m := &Menu[string]{Title: "Pick:", Items: items(20)}

	if _, err := m.Show(s); err != nil {
		t.Fatalf("Show() error = %v", err)
	}

	// One frame printed 1 title line + 5 items, leaving the cursor on row 7;
	// the redraw must jump back to row 1.
	if len(s.moves) != 1 || s.moves[0] != 1 {
		t.Errorf("SetCursorPos rows = %v, want [1]", s.moves)
	}
}

func TestRenderTruncatesAndPads(t *testing.T) {
	s := newFakeScreen(10, rowsForViewport5, terminal.KeyReturn)
	m := &Menu[string]{
		Title: "Pick:",
		Items: []string{"a very long item name", "ok"},
	}

	if _, err := m.Show(s); err != nil {
		t.Fatalf("Show() error = %v", err)
	}

	out := s.out.String()
	if !strings.Contains(out, "> a very l") {
		t.Errorf("focused line not truncated to width, output:\n%s", out)
	}
	if !strings.Contains(out, "  ok      ") {
		t.Errorf("short line not padded to width, output:\n%s", out)
	}
}

func TestPadLine(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"abc", 5, "abc  "},
		{"abcdef", 4, "abcd"},
		{"abcd", 4, "abcd"},
		{"", 3, "   "},
		{"abc", 0, ""},
		// Truncation must never split a multi-byte rune.
		{"héllo", 3, "hé"},
		{"héllo", 2, "h "},
		{"ééé", 3, "é "},
	}
	for _, tt := range tests {
		got := padLine(tt.text, tt.width)
		if got != tt.want {
			t.Errorf("padLine(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
		if len(got) != tt.width {
			t.Errorf("padLine(%q, %d) length = %d, want %d", tt.text, tt.width, len(got), tt.width)
		}
		if !utf8.ValidString(got) {
			t.Errorf("padLine(%q, %d) = %q is not valid UTF-8", tt.text, tt.width, got)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name      string
		defaultNo bool
		keys      []terminal.Key
		want      bool
	}{
		{"default yes, return", false, []terminal.Key{terminal.KeyReturn}, true},
		{"default no, return", true, []terminal.Key{terminal.KeyReturn}, false},
		{"default yes, pick no", false, []terminal.Key{terminal.KeyDown, terminal.KeyReturn}, false},
		{"default no, pick yes", true, []terminal.Key{terminal.KeyUp, terminal.KeyReturn}, true},
		{"escape means no", false, []terminal.Key{terminal.KeyEscape}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeScreen(40, rowsForViewport5, tt.keys...)
			got, err := Confirm(s, "Continue?", tt.defaultNo)
			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
		})
	}
}
