// Package menu implements an interactive, scrollable selection menu that
// redraws itself in place in the terminal.
package menu

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kbfirmware/kbsetup/internal/terminal"
)

// ErrCanceled is returned when the user dismisses a menu without making a
// selection (Escape or Ctrl+C). It is expected control flow, not a fault.
var ErrCanceled = errors.New("menu canceled")

// Rows reserved around the item list: the title line, the trailing blank
// line, and the shell prompt that reappears after the menu closes.
const chromeRows = 3

type viewport struct {
	width  int
	height int
}

// Menu is an interactive menu for picking one item from a list. Items keep
// the order given by the caller; it is the navigation order.
type Menu[T any] struct {
	Title string
	Items []T

	// Format returns the one-line display text for an item.
	// Defaults to fmt.Sprint.
	Format func(T) string

	// FocusColor is the color of the focused item. Defaults to green.
	FocusColor terminal.Color

	// DefaultIndex is the initially focused item, clamped to the valid range.
	DefaultIndex int

	focus  int
	scroll int
}

// Show displays an interactive menu and returns the selected item.
func Show[T any](s terminal.Screen, title string, items []T, format func(T) string) (T, error) {
	m := &Menu[T]{Title: title, Items: items, Format: format}
	return m.Show(s)
}

// Show runs the menu loop until the user selects an item or cancels.
// It returns ErrCanceled if the user cancels. The cursor is hidden for the
// duration of the loop and restored on every exit path, and one blank line
// is printed after the menu to separate it from subsequent output.
func (m *Menu[T]) Show(s terminal.Screen) (T, error) {
	var zero T
	if len(m.Items) == 0 {
		return zero, errors.New("menu: no items")
	}

	m.focus = clamp(m.DefaultIndex, 0, len(m.Items)-1)
	m.scroll = 0

	defer fmt.Fprintln(s)
	restore := s.HideCursor()
	defer restore()

	for {
		view := m.viewport(s)
		m.scroll = m.scrollIndex(view)
		m.render(s, view)

		done, err := m.handleKey(s, view)
		if err != nil {
			return zero, err
		}
		if done {
			return m.Items[m.focus], nil
		}

		if err := m.resetCursorToTop(s, view); err != nil {
			return zero, err
		}
	}
}

// viewport returns the terminal area available to the item list. It is
// recomputed every frame because the terminal may have been resized.
func (m *Menu[T]) viewport(s terminal.Screen) viewport {
	cols, rows := s.Size()
	height := rows - chromeRows
	if height < 1 {
		height = 1
	}
	return viewport{width: cols, height: height}
}

func (m *Menu[T]) displayCount(view viewport) int {
	if len(m.Items) < view.height {
		return len(m.Items)
	}
	return view.height
}

// scrollIndex returns the index of the first visible item for the current
// focus, keeping one item of context above or below the focus when scrolling.
func (m *Menu[T]) scrollIndex(view viewport) int {
	return nextScroll(m.scroll, m.focus, len(m.Items), m.displayCount(view))
}

func nextScroll(scroll, focus, itemCount, displayCount int) int {
	if itemCount <= displayCount {
		return 0
	}

	lastDisplayed := scroll + displayCount - 1

	if focus <= scroll {
		return max(0, focus-1)
	}
	if focus >= lastDisplayed {
		return min(itemCount-1, focus+1) - (displayCount - 1)
	}
	return scroll
}

func (m *Menu[T]) render(s terminal.Screen, view viewport) {
	fmt.Fprintln(s, m.Title)

	count := m.displayCount(view)
	for row := 0; row < count; row++ {
		index := m.scroll + row
		m.renderItem(s, m.Items[index], index == m.focus, view)
	}
}

func (m *Menu[T]) renderItem(s terminal.Screen, item T, focused bool, view viewport) {
	color := terminal.ColorDefault
	indent := "  "
	if focused {
		color = m.focusColor()
		indent = "> "
	}

	// Items are one line each: truncate to the viewport width and pad with
	// spaces so a redraw never leaves stale characters from a longer line.
	text := padLine(indent+m.format(item), view.width)

	fmt.Fprintln(s, terminal.Colorize(text, color))
}

// handleKey blocks for one keypress and applies it. It reports whether the
// loop should finish with the focused item selected.
func (m *Menu[T]) handleKey(s terminal.Screen, view viewport) (bool, error) {
	key, err := s.ReadKey()
	if err != nil {
		if errors.Is(err, terminal.ErrInterrupt) {
			return false, ErrCanceled
		}
		return false, err
	}

	switch key {
	case terminal.KeyReturn:
		return true, nil
	case terminal.KeyEscape:
		return false, ErrCanceled
	case terminal.KeyUp:
		m.focus--
	case terminal.KeyDown:
		m.focus++
	case terminal.KeyPageUp:
		m.focus -= view.height
	case terminal.KeyPageDown:
		m.focus += view.height
	case terminal.KeyHome:
		m.focus = 0
	case terminal.KeyEnd:
		m.focus = len(m.Items) - 1
	}

	m.focus = clamp(m.focus, 0, len(m.Items)-1)
	return false, nil
}

// resetCursorToTop moves the cursor back to the menu's first printed line so
// the next frame overwrites this one instead of scrolling the terminal.
func (m *Menu[T]) resetCursorToTop(s terminal.Screen, view viewport) error {
	row, _, err := s.CursorPos()
	if err != nil {
		return err
	}

	row = max(1, row-m.displayCount(view)-1)
	s.SetCursorPos(row, 1)
	return nil
}

func (m *Menu[T]) format(item T) string {
	if m.Format != nil {
		return m.Format(item)
	}
	return fmt.Sprint(item)
}

func (m *Menu[T]) focusColor() terminal.Color {
	if m.FocusColor != "" {
		return m.FocusColor
	}
	return terminal.ColorGreen
}

func padLine(text string, width int) string {
	if width < 0 {
		width = 0
	}
	if len(text) > width {
		// Back off to a rune boundary so truncation never emits a
		// partial UTF-8 sequence.
		cut := width
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text + strings.Repeat(" ", width-len(text))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
