// Package hardware models the keyboard hardware metadata list published by
// the firmware project and the compatibility rules between shields and
// controller boards.
package hardware

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// Type discriminates the entries in the metadata list.
type Type string

const (
	TypeBoard        Type = "board"
	TypeShield       Type = "shield"
	TypeInterconnect Type = "interconnect"
)

// Entry is one piece of hardware from the metadata list. Boards, shields and
// interconnects share one shape; fields not relevant to a type are empty.
type Entry struct {
	Type        Type     `json:"type"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Directory   string   `json:"directory"`
	URL         string   `json:"url,omitempty"`
	Arch        string   `json:"arch,omitempty"`
	Description string   `json:"description,omitempty"`
	Outputs     []string `json:"outputs,omitempty"`
	Features    []string `json:"features,omitempty"`
	Siblings    []string `json:"siblings,omitempty"`
	Exposes     []string `json:"exposes,omitempty"`
	Requires    []string `json:"requires,omitempty"`
}

// ParseMetadata decodes the hardware metadata JSON list and sorts it by
// name in natural order.
func ParseMetadata(data []byte) ([]*Entry, error) {
	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse hardware metadata: %w", err)
	}
	SortByName(entries)
	return entries, nil
}

// SortByName sorts entries by display name, case insensitively and with
// numbers compared by value ("Corne 10" after "Corne 2").
func SortByName(entries []*Entry) {
	slices.SortStableFunc(entries, func(a, b *Entry) int {
		an := strings.ToLower(a.Name)
		bn := strings.ToLower(b.Name)
		switch {
		case an == bn:
			return 0
		case natural.Less(an, bn):
			return -1
		default:
			return 1
		}
	})
}

// IsBoard reports whether the entry is a standalone board.
func (e *Entry) IsBoard() bool { return e.Type == TypeBoard }

// IsShield reports whether the entry is a shield.
func (e *Entry) IsShield() bool { return e.Type == TypeShield }

// IsKeyboard reports whether the entry is a keyboard: a shield, or a board
// with the "keys" feature.
func (e *Entry) IsKeyboard() bool {
	if e.IsBoard() {
		return slices.Contains(e.Features, "keys")
	}
	return e.IsShield()
}

// IsController reports whether the entry is a controller board
// (a board that is not itself a keyboard).
func (e *Entry) IsController() bool {
	return e.IsBoard() && !e.IsKeyboard()
}

// SiblingIDs returns the board/shield IDs making up this entry. Hardware
// without explicit siblings is a single part identified by its own ID.
func (e *Entry) SiblingIDs() []string {
	if len(e.Siblings) > 0 {
		return e.Siblings
	}
	return []string{e.ID}
}

// IsSplit reports whether the entry has multiple parts that must be built.
func (e *Entry) IsSplit() bool {
	return len(e.SiblingIDs()) > 1
}

// USBOnly reports whether the entry does not support bluetooth.
func (e *Entry) USBOnly() bool {
	return !slices.Contains(e.Outputs, "ble")
}

// InterconnectCompatible reports whether the board exposes every
// interconnect the shield requires.
func InterconnectCompatible(shield, board *Entry) bool {
	for _, required := range shield.Requires {
		if !slices.Contains(board.Exposes, required) {
			return false
		}
	}
	return true
}

// CompatibleController reports whether shield and board form a shield plus
// a controller board with a matching interconnect.
func CompatibleController(shield, board *Entry) bool {
	return shield.IsShield() && board.IsController() && InterconnectCompatible(shield, board)
}

// Keyboards filters the metadata list down to keyboards.
func Keyboards(entries []*Entry) []*Entry {
	var out []*Entry
	for _, e := range entries {
		if e.IsKeyboard() {
			out = append(out, e)
		}
	}
	return out
}

// Controllers filters the metadata list down to controller boards
// compatible with the given shield.
func Controllers(entries []*Entry, shield *Entry) []*Entry {
	var out []*Entry
	for _, e := range entries {
		if CompatibleController(shield, e) {
			out = append(out, e)
		}
	}
	return out
}

// ConfigFileName returns the name of the keyboard's .conf file.
func (e *Entry) ConfigFileName() string { return e.ID + ".conf" }

// KeymapFileName returns the name of the keyboard's .keymap file.
func (e *Entry) KeymapFileName() string { return e.ID + ".keymap" }

// Selection is the user's chosen keyboard plus, for shields, the matching
// controller board. BoardIDs and ShieldIDs list the parts to build.
type Selection struct {
	Keyboard   *Entry
	Controller *Entry
	BoardIDs   []string
	ShieldIDs  []string
}

// NewBoardSelection builds the selection for a standalone keyboard board.
func NewBoardSelection(keyboard *Entry) *Selection {
	return &Selection{
		Keyboard: keyboard,
		BoardIDs: keyboard.SiblingIDs(),
	}
}

// NewShieldSelection builds the selection for a shield mounted on a
// controller board.
func NewShieldSelection(keyboard, controller *Entry) *Selection {
	return &Selection{
		Keyboard:   keyboard,
		Controller: controller,
		BoardIDs:   []string{controller.ID},
		ShieldIDs:  keyboard.SiblingIDs(),
	}
}
