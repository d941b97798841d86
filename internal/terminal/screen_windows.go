//go:build windows

package terminal

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
	xterm "golang.org/x/term"
)

var (
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procReadConsoleInput = kernel32.NewProc("ReadConsoleInputW")
)

// Virtual-key codes for the navigation keys the menu understands.
const (
	vkPrior = 0x21 // Page Up
	vkNext  = 0x22 // Page Down
	vkEnd   = 0x23
	vkHome  = 0x24
	vkLeft  = 0x25
	vkUp    = 0x26
	vkRight = 0x27
	vkDown  = 0x28
)

var virtualKeys = map[uint16]Key{
	vkPrior: KeyPageUp,
	vkNext:  KeyPageDown,
	vkEnd:   KeyEnd,
	vkHome:  KeyHome,
	vkLeft:  KeyLeft,
	vkUp:    KeyUp,
	vkRight: KeyRight,
	vkDown:  KeyDown,
}

const keyEventType = 0x0001

// inputRecord mirrors the INPUT_RECORD layout for key events.
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

type windowsScreen struct {
	in  windows.Handle
	out *os.File
}

// NewScreen opens the process console on standard input/output.
func NewScreen() (Screen, error) {
	in := windows.Handle(os.Stdin.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(in, &mode); err != nil {
		return nil, errors.New("standard input is not a console")
	}
	if !xterm.IsTerminal(int(os.Stdout.Fd())) {
		return nil, errors.New("standard output is not a console")
	}

	return &windowsScreen{in: in, out: os.Stdout}, nil
}

func (s *windowsScreen) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *windowsScreen) Size() (int, int) {
	cols, rows, err := xterm.GetSize(int(s.out.Fd()))
	if err != nil {
		return 80, 24
	}
	return cols, rows
}

// ReadKey reads console input records until a key-down event arrives and
// maps its virtual-key code or character to a symbolic key. The input handle
// runs in raw mode for the duration of the read: with processed input on,
// Ctrl+C raises a console control event instead of entering the input
// buffer, and the interrupt would never reach the caller.
func (s *windowsScreen) ReadKey() (Key, error) {
	restore, err := s.rawInput()
	if err != nil {
		return KeyNone, err
	}
	defer restore()

	for {
		var rec inputRecord
		var read uint32
		r1, _, err := procReadConsoleInput.Call(
			uintptr(s.in),
			uintptr(unsafe.Pointer(&rec)),
			1,
			uintptr(unsafe.Pointer(&read)),
		)
		if r1 == 0 {
			return KeyNone, fmt.Errorf("read console input: %w", err)
		}
		if rec.eventType != keyEventType || rec.keyDown == 0 {
			continue
		}

		switch rec.unicodeChar {
		case 0x03: // Ctrl+C
			return KeyNone, ErrInterrupt
		case '\r', '\n':
			return KeyReturn, nil
		case 0x1b:
			return KeyEscape, nil
		}

		if key, ok := virtualKeys[rec.virtualKeyCode]; ok {
			return key, nil
		}
		if rec.unicodeChar != 0 {
			return KeyNone, nil
		}
		// Modifier-only event; keep waiting.
	}
}

// rawInput switches the input handle to raw mode and returns a function
// restoring the previous mode.
func (s *windowsScreen) rawInput() (func(), error) {
	var old uint32
	if err := windows.GetConsoleMode(s.in, &old); err != nil {
		return nil, fmt.Errorf("query console mode: %w", err)
	}
	if err := windows.SetConsoleMode(s.in, rawInputMode(old)); err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	return func() {
		_ = windows.SetConsoleMode(s.in, old)
	}, nil
}

// rawInputMode clears line buffering, echo and processed input. Clearing
// ENABLE_PROCESSED_INPUT makes Ctrl+C arrive as a key event record rather
// than a console control event.
func rawInputMode(mode uint32) uint32 {
	return mode &^ (windows.ENABLE_PROCESSED_INPUT |
		windows.ENABLE_LINE_INPUT |
		windows.ENABLE_ECHO_INPUT)
}

func (s *windowsScreen) CursorPos() (int, int, error) {
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(windows.Handle(s.out.Fd()), &info); err != nil {
		return 0, 0, fmt.Errorf("query cursor position: %w", err)
	}
	return int(info.CursorPosition.Y) + 1, int(info.CursorPosition.X) + 1, nil
}

func (s *windowsScreen) SetCursorPos(row, col int) {
	pos := windows.Coord{X: int16(col - 1), Y: int16(row - 1)}
	_ = windows.SetConsoleCursorPosition(windows.Handle(s.out.Fd()), pos)
}

func (s *windowsScreen) HideCursor() func() {
	_, _ = s.out.WriteString("\x1b[?25l")
	return func() {
		_, _ = s.out.WriteString("\x1b[?25h")
	}
}

// EnableVT turns on virtual terminal processing so ANSI sequences written to
// the console are interpreted rather than printed.
func (s *windowsScreen) EnableVT() (func(), error) {
	handle := windows.Handle(s.out.Fd())

	var old uint32
	if err := windows.GetConsoleMode(handle, &old); err != nil {
		return nil, fmt.Errorf("query console mode: %w", err)
	}

	mode := old |
		windows.ENABLE_PROCESSED_OUTPUT |
		windows.ENABLE_WRAP_AT_EOL_OUTPUT |
		windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING

	if err := windows.SetConsoleMode(handle, mode); err != nil {
		return nil, fmt.Errorf("enable virtual terminal processing: %w", err)
	}

	return func() {
		_ = windows.SetConsoleMode(handle, old)
	}, nil
}
