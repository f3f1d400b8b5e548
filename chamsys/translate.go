package chamsys

import (
	"fmt"

	"github.com/nyejames/midi-lx/midi"
)

// FirstSlotNote is the note that controls playback 1 on the desk.
const FirstSlotNote uint8 = 48

// Translate turns one MIDI message into a desk command.
//
// prev is the most recently touched playback; note messages update it and the
// wheel controller reads it. ok is false for messages that map to nothing,
// which is not an error.
func Translate(msg []byte, prev *uint8, table SlotTable) (cmd string, ok bool, err error) {
	if len(msg) < 2 {
		return "", false, fmt.Errorf("%d bytes: %w", len(msg), ErrMalformedMessage)
	}
	status, note := msg[0], msg[1]

	var on bool
	switch {
	case midi.IsOn(status):
		on = true
	case midi.IsOff(status):
		on = false
	case status == midi.Wheel:
		if len(msg) < 3 {
			return "", false, fmt.Errorf("controller without value: %w", ErrMalformedMessage)
		}
		return fmt.Sprintf("%d,%dL", *prev, msg[2]), true, nil
	default:
		return "", false, nil
	}

	if note < FirstSlotNote {
		return "", false, nil
	}
	slot := note - FirstSlotNote + 1
	*prev = slot

	action, mapped := table[note]
	if !mapped {
		if on {
			return fmt.Sprintf("%dA", slot), true, nil
		}
		return fmt.Sprintf("%dR", slot), true, nil
	}

	switch action {
	case Activate:
		if on {
			return fmt.Sprintf("%dA", slot), true, nil
		}
	case Deactivate:
		if on {
			return fmt.Sprintf("%dR", slot), true, nil
		}
	case SetIntensity:
		level := uint8(0)
		if on && len(msg) > 2 {
			level = msg[2]
		}
		return fmt.Sprintf("%d,%dL", slot, level), true, nil
	}
	return "", false, nil
}
