package chamsys

import "errors"

var (
	// ErrMalformedMessage is returned when a MIDI message is too short for its type.
	ErrMalformedMessage = errors.New("malformed midi message")

	// ErrPayloadTooLarge is returned when a command does not fit the 16-bit length field.
	ErrPayloadTooLarge = errors.New("payload too large")

	ErrSocketBind = errors.New("bind socket")
	ErrSocketSend = errors.New("send command")

	ErrShortPacket    = errors.New("packet shorter than header")
	ErrBadMagic       = errors.New("bad packet magic")
	ErrLengthMismatch = errors.New("packet length mismatch")
)
