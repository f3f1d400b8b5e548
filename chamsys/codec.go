package chamsys

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// DefaultPort is the UDP port MagicQ listens on for remote control.
const DefaultPort = 6553

// Magic tags framed (CREP) packets.
var Magic = [4]byte{'C', 'R', 'E', 'P'}

// HeaderSize is the length of a framed packet header.
const HeaderSize = 10

// Header is the framed packet prefix. Field sizes in bytes:
type Header struct {
	Magic   [4]byte // 4
	Version uint16  // 2
	SeqFwd  uint8   // 1
	SeqBkwd uint8   // 1
	Length  uint16  // 2
}

// EncodeRaw returns the command as sent in rx (no header) mode.
func EncodeRaw(cmd string) []byte {
	return []byte(cmd)
}

// EncodeFramed wraps the command in a CREP header. All multi-byte fields are
// big endian.
func EncodeFramed(cmd string, fwd, bkwd uint8) ([]byte, error) {
	payload := []byte(cmd)
	if len(payload) > math.MaxUint16 {
		return nil, fmt.Errorf("%d bytes: %w", len(payload), ErrPayloadTooLarge)
	}

	hdr := Header{
		Magic:   Magic,
		SeqFwd:  fwd,
		SeqBkwd: bkwd,
		Length:  uint16(len(payload)),
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+len(payload)))
	if err := binary.Write(buf, binary.BigEndian, hdr); err != nil {
		return nil, err
	}
	buf.Write(payload)
	return buf.Bytes(), nil
}

// DecodeFramed splits a framed packet into its header and payload.
func DecodeFramed(b []byte) (Header, []byte, error) {
	var hdr Header
	if len(b) < HeaderSize {
		return hdr, nil, ErrShortPacket
	}
	if err := binary.Read(bytes.NewReader(b[:HeaderSize]), binary.BigEndian, &hdr); err != nil {
		return hdr, nil, err
	}
	if hdr.Magic != Magic {
		return hdr, nil, ErrBadMagic
	}
	payload := b[HeaderSize:]
	if int(hdr.Length) != len(payload) {
		return hdr, nil, fmt.Errorf("header says %d, got %d: %w", hdr.Length, len(payload), ErrLengthMismatch)
	}
	return hdr, payload, nil
}

// Sequence holds the framed-mode sequence numbers. Forward advances after
// every framed send; Backward is the last sequence number heard from the desk
// and this side never advances it.
type Sequence struct {
	Forward  uint8
	Backward uint8
}

// Next returns the numbers to stamp on the next packet and advances Forward.
func (s *Sequence) Next() (fwd, bkwd uint8) {
	fwd, bkwd = s.Forward, s.Backward
	s.Forward++
	return fwd, bkwd
}
