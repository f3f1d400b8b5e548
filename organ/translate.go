package organ

import (
	"errors"
	"fmt"

	"github.com/nyejames/midi-lx/midi"
)

var ErrMalformedMessage = errors.New("malformed midi message")

// FirstStopNote is where DefaultNoteMap starts laying out stops (C2).
const FirstStopNote uint8 = 36

// NoteMap maps a controller note to the stop it switches.
type NoteMap map[uint8]Stop

// DefaultNoteMap lays the stops out in id order from FirstStopNote upwards,
// as far as the MIDI note range allows.
func DefaultNoteMap() NoteMap {
	m := make(NoteMap)
	note := int(FirstStopNote)
	for _, s := range Stops() {
		if note > 127 {
			break
		}
		m[uint8(note)] = s
		note++
	}
	return m
}

// ParseNoteMap builds a map from note -> stop name (or number) pairs.
func ParseNoteMap(raw map[int]string) (NoteMap, error) {
	m := make(NoteMap, len(raw))
	for note, name := range raw {
		if note < 0 || note > 127 {
			return nil, fmt.Errorf("note %d out of range", note)
		}
		s, ok := ParseStop(name)
		if !ok {
			return nil, fmt.Errorf("note %d: unknown stop %q", note, name)
		}
		m[uint8(note)] = s
	}
	return m, nil
}

// Translate converts one controller message into a message for the organ.
// Mapped notes become stop SysEx (note-on with velocity 0 counts as off);
// stop SysEx is passed through untouched. ok is false for anything else.
func Translate(msg []byte, notes NoteMap) (out []byte, ok bool, err error) {
	if len(msg) == 0 {
		return nil, false, ErrMalformedMessage
	}
	if msg[0] == midi.SysEx {
		if IsStopMessage(msg) {
			return append([]byte(nil), msg...), true, nil
		}
		return nil, false, nil
	}
	if len(msg) < 2 {
		return nil, false, fmt.Errorf("%d bytes: %w", len(msg), ErrMalformedMessage)
	}

	status, note := msg[0], msg[1]
	var on bool
	switch {
	case midi.IsOn(status):
		on = len(msg) < 3 || msg[2] > 0
	case midi.IsOff(status):
		on = false
	default:
		return nil, false, nil
	}

	stop, mapped := notes[note]
	if !mapped {
		return nil, false, nil
	}
	return EncodeStop(stop, on), true, nil
}
