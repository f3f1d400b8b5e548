package chamsys

import (
	"fmt"
	"strings"
)

// SlotAction is what a mapped key does to its playback.
type SlotAction int

const (
	Activate SlotAction = iota
	Deactivate
	SetIntensity
)

func (a SlotAction) String() string {
	switch a {
	case Activate:
		return "activate"
	case Deactivate:
		return "deactivate"
	case SetIntensity:
		return "intensity"
	}
	return fmt.Sprintf("SlotAction(%d)", int(a))
}

// ParseSlotAction accepts the names produced by String, case-insensitively.
func ParseSlotAction(s string) (SlotAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "activate", "a":
		return Activate, nil
	case "deactivate", "release", "r":
		return Deactivate, nil
	case "intensity", "level", "l":
		return SetIntensity, nil
	}
	return 0, fmt.Errorf("unknown slot action %q", s)
}

// SlotTable maps a note number to the action it performs. Notes without an
// entry use the default on/off behaviour.
type SlotTable map[uint8]SlotAction

// ParseSlotTable builds a table from note -> action name pairs, as found in
// config files and HTTP requests.
func ParseSlotTable(raw map[int]string) (SlotTable, error) {
	t := make(SlotTable, len(raw))
	for note, name := range raw {
		if note < 0 || note > 127 {
			return nil, fmt.Errorf("note %d out of range", note)
		}
		a, err := ParseSlotAction(name)
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", note, err)
		}
		t[uint8(note)] = a
	}
	return t, nil
}

// Clone returns a copy safe to hand to another goroutine.
func (t SlotTable) Clone() SlotTable {
	c := make(SlotTable, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}
