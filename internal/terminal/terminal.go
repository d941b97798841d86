// Package terminal provides the low-level terminal capabilities the wizard
// needs: one-key raw input, cursor positioning, and ANSI colors. Platform
// differences are hidden behind the Screen interface; the rest of the
// program never knows which implementation is active.
package terminal

import (
	"errors"
	"fmt"
	"io"
)

// Key is a decoded logical keypress.
type Key int

const (
	// KeyNone is any keypress the decoder does not recognize.
	KeyNone Key = iota
	KeyReturn
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

// ErrInterrupt is returned by ReadKey when the user presses Ctrl+C.
var ErrInterrupt = errors.New("interrupted")

// Color is an ANSI SGR color code (the text between "[" and "m").
type Color string

const (
	ColorDefault Color = "0"
	ColorRed     Color = "31"
	ColorGreen   Color = "32"
	ColorYellow  Color = "33"
	ColorBlue    Color = "34"
	ColorGray    Color = "90"
)

// Colorize wraps text in ANSI escape codes to change its color.
func Colorize(text string, color Color) string {
	return fmt.Sprintf("\x1b[%sm%s\x1b[0m", color, text)
}

// Screen is the terminal capability used by the menu and the wizard.
// NewScreen returns the implementation for the host platform.
type Screen interface {
	io.Writer

	// Size returns the terminal size in columns and rows. It must be
	// queried every frame; the terminal may be resized at any time.
	Size() (cols, rows int)

	// ReadKey blocks until one logical keypress is available and decodes
	// it. Input is not echoed. Ctrl+C returns ErrInterrupt.
	ReadKey() (Key, error)

	// CursorPos returns the 1-based cursor row and column.
	CursorPos() (row, col int, err error)

	// SetCursorPos moves the cursor to a 1-based row and column.
	SetCursorPos(row, col int)

	// HideCursor hides the text cursor and returns a function that
	// shows it again. The returned function must always be called.
	HideCursor() (restore func())

	// EnableVT enables interpretation of ANSI escape sequences where the
	// platform requires it and returns a function restoring the previous
	// mode. A no-op on platforms where ANSI is the default.
	EnableVT() (restore func(), err error)
}
