package organ

import "errors"

/*
Stops are transmitted and received as 9 byte SysEx messages:

	F0 2B 01 01 22/23 00 hi lo F7

	22 = stop off
	23 = stop on
	hi, lo = high and low nibble of the internal stop number, one per byte
*/

const (
	sysExStart   = 0xF0
	manufacturer = 0x2B
	deviceID     = 0x01
	modelGroup   = 0x01
	opStopOff    = 0x22
	opStopOn     = 0x23
	sysExEnd     = 0xF7

	// StopMessageLen is the length of a stop SysEx message.
	StopMessageLen = 9
)

var ErrNotStopMessage = errors.New("not an organ stop message")

// EncodeStop builds the SysEx message that switches a stop on or off.
func EncodeStop(stop Stop, on bool) []byte {
	op := byte(opStopOff)
	if on {
		op = opStopOn
	}
	id := stop.ID()
	return []byte{
		sysExStart,
		manufacturer,
		deviceID,
		modelGroup,
		op,
		0x00,
		id >> 4,
		id & 0x0F,
		sysExEnd,
	}
}

// DecodeStop parses a stop SysEx message. The whole envelope is checked and
// the number must name a defined stop.
func DecodeStop(msg []byte) (stop Stop, on bool, ok bool) {
	if len(msg) != StopMessageLen {
		return 0, false, false
	}
	if msg[0] != sysExStart || msg[1] != manufacturer || msg[2] != deviceID || msg[3] != modelGroup {
		return 0, false, false
	}
	switch msg[4] {
	case opStopOn:
		on = true
	case opStopOff:
		on = false
	default:
		return 0, false, false
	}
	if msg[5] != 0x00 || msg[6] > 0x0F || msg[7] > 0x0F || msg[8] != sysExEnd {
		return 0, false, false
	}
	stop, ok = StopByID(msg[6]<<4 | msg[7])
	if !ok {
		return 0, false, false
	}
	return stop, on, true
}

// IsStopMessage reports whether msg looks like a stop message from this organ.
func IsStopMessage(msg []byte) bool {
	_, _, ok := DecodeStop(msg)
	return ok
}
