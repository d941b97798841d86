//go:build !windows

package terminal

import (
	"errors"
	"fmt"
	"os"

	xterm "golang.org/x/term"
)

type unixScreen struct {
	in  *os.File
	out *os.File
}

// NewScreen opens the process terminal on standard input/output.
func NewScreen() (Screen, error) {
	if !xterm.IsTerminal(int(os.Stdin.Fd())) || !xterm.IsTerminal(int(os.Stdout.Fd())) {
		return nil, errors.New("standard input/output is not a terminal")
	}
	return &unixScreen{in: os.Stdin, out: os.Stdout}, nil
}

func (s *unixScreen) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *unixScreen) Size() (int, int) {
	cols, rows, err := xterm.GetSize(int(s.out.Fd()))
	if err != nil {
		return 80, 24
	}
	return cols, rows
}

// ReadKey puts the terminal in raw mode only for the duration of the read,
// so regular output between keypresses keeps normal line discipline.
func (s *unixScreen) ReadKey() (Key, error) {
	restore, err := s.rawMode()
	if err != nil {
		return KeyNone, err
	}
	defer restore()

	var buf [8]byte
	n, err := s.in.Read(buf[:])
	if err != nil {
		return KeyNone, fmt.Errorf("read key: %w", err)
	}
	return decodeBytes(buf[:n])
}

// CursorPos asks the terminal for a cursor position report and parses the
// response. The query round-trip runs in raw mode so the response is not
// echoed or line-buffered.
func (s *unixScreen) CursorPos() (int, int, error) {
	restore, err := s.rawMode()
	if err != nil {
		return 0, 0, err
	}
	defer restore()

	if _, err := s.out.WriteString("\x1b[6n"); err != nil {
		return 0, 0, fmt.Errorf("query cursor position: %w", err)
	}

	report := make([]byte, 0, 16)
	one := make([]byte, 1)
	for {
		if _, err := s.in.Read(one); err != nil {
			return 0, 0, fmt.Errorf("query cursor position: %w", err)
		}
		report = append(report, one[0])
		if one[0] == 'R' {
			break
		}
		if len(report) > 32 {
			return 0, 0, fmt.Errorf("malformed cursor report %q", report)
		}
	}

	return parseCursorReport(string(report))
}

func (s *unixScreen) SetCursorPos(row, col int) {
	fmt.Fprintf(s.out, "\x1b[%d;%dH", row, col)
}

func (s *unixScreen) HideCursor() func() {
	_, _ = s.out.WriteString("\x1b[?25l")
	return func() {
		_, _ = s.out.WriteString("\x1b[?25h")
	}
}

// EnableVT is a no-op; Unix terminals interpret VT sequences natively.
func (s *unixScreen) EnableVT() (func(), error) {
	return func() {}, nil
}

func (s *unixScreen) rawMode() (func(), error) {
	fd := int(s.in.Fd())
	state, err := xterm.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	return func() {
		_ = xterm.Restore(fd, state)
	}, nil
}
