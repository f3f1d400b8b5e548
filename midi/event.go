package midi

// MIDI message types
const (
	NoteOn   uint8 = 0x90
	NoteOff  uint8 = 0x80
	CC       uint8 = 0xB0
	SysEx    uint8 = 0xF0
	SysExEnd uint8 = 0xF7

	// Wheel is the one controller status the bridge understands (CC on channel 1).
	Wheel = CC
)

// IsOn reports a note-on status on any channel.
func IsOn(status uint8) bool {
	return status >= 0x90 && status <= 0x9F
}

// IsOff reports a note-off status on any channel.
func IsOff(status uint8) bool {
	return status >= 0x80 && status <= 0x8F
}

func IsController(status uint8) bool {
	return status >= 0xB0 && status <= 0xBF
}

// Channel returns the 1-based channel of a channel message, or 1 for system
// messages which have none.
func Channel(status uint8) uint8 {
	if status >= 0xF0 {
		return 1
	}
	return status%16 + 1
}

// Event is a decoded note or controller message, used for display.
type Event struct {
	Type     uint8 // NoteOn, NoteOff, CC
	Channel  uint8 // 1-16
	Note     uint8
	Velocity uint8
}

// Decode classifies a raw message. ok is false for anything that is not a
// complete note or controller message.
func Decode(msg []byte) (ev Event, ok bool) {
	if len(msg) < 3 {
		return ev, false
	}
	status := msg[0]
	switch {
	case IsOn(status):
		ev.Type = NoteOn
	case IsOff(status):
		ev.Type = NoteOff
	case IsController(status):
		ev.Type = CC
	default:
		return ev, false
	}
	ev.Channel = Channel(status)
	ev.Note = msg[1]
	ev.Velocity = msg[2]
	return ev, true
}
