package terminal

import (
	"fmt"
	"strconv"
	"strings"
)

// escapeKeys maps xterm/vt escape sequences (minus the leading ESC) to keys.
var escapeKeys = map[string]Key{
	"[A":  KeyUp,
	"[B":  KeyDown,
	"[C":  KeyRight,
	"[D":  KeyLeft,
	"[F":  KeyEnd,
	"[H":  KeyHome,
	"[5~": KeyPageUp,
	"[6~": KeyPageDown,
}

// decodeBytes maps one raw input chunk to a symbolic key. Multi-byte escape
// sequences arrive in a single read in raw mode, so a lone ESC byte is the
// Escape key itself. Unrecognized input decodes to KeyNone.
func decodeBytes(b []byte) (Key, error) {
	if len(b) == 0 {
		return KeyNone, nil
	}

	switch b[0] {
	case 0x03: // Ctrl+C
		return KeyNone, ErrInterrupt
	case '\r', '\n':
		return KeyReturn, nil
	case 0x1b:
		if len(b) == 1 {
			return KeyEscape, nil
		}
		if key, ok := escapeKeys[string(b[1:])]; ok {
			return key, nil
		}
		return KeyNone, nil
	}

	return KeyNone, nil
}

// parseCursorReport parses a cursor position report ("ESC[<row>;<col>R")
// into a 1-based row and column.
func parseCursorReport(report string) (row, col int, err error) {
	body, ok := strings.CutPrefix(report, "\x1b[")
	if !ok {
		return 0, 0, fmt.Errorf("malformed cursor report %q", report)
	}
	body, ok = strings.CutSuffix(body, "R")
	if !ok {
		return 0, 0, fmt.Errorf("malformed cursor report %q", report)
	}

	rowText, colText, ok := strings.Cut(body, ";")
	if !ok {
		return 0, 0, fmt.Errorf("malformed cursor report %q", report)
	}

	row, err = strconv.Atoi(rowText)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed cursor report %q", report)
	}
	col, err = strconv.Atoi(colText)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed cursor report %q", report)
	}

	return row, col, nil
}
