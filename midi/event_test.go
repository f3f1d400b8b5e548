package midi_test

import (
	"testing"

	"github.com/nyejames/midi-lx/midi"
)

func TestStatusHelpers(t *testing.T) {
	for s := 0; s < 256; s++ {
		status := uint8(s)
		if got, want := midi.IsOn(status), s>>4 == 0x9; got != want {
			t.Fatalf("IsOn(%#x): Expected %v. Got: %v", s, want, got)
		}
		if got, want := midi.IsOff(status), s>>4 == 0x8; got != want {
			t.Fatalf("IsOff(%#x): Expected %v. Got: %v", s, want, got)
		}
		if got, want := midi.IsController(status), s>>4 == 0xB; got != want {
			t.Fatalf("IsController(%#x): Expected %v. Got: %v", s, want, got)
		}
	}
}

func TestChannel(t *testing.T) {
	tests := map[uint8]uint8{0x90: 1, 0x9F: 16, 0x85: 6, 0xB0: 1, 0xF0: 1, 0xF7: 1}
	for status, want := range tests {
		if got := midi.Channel(status); got != want {
			t.Fatalf("Channel(%#x): Expected %d. Got: %d", status, want, got)
		}
	}
}

func TestDecode(t *testing.T) {
	ev, ok := midi.Decode([]byte{0x93, 60, 100})
	if !ok {
		t.Fatal("Expected a note-on")
	}
	want := midi.Event{Type: midi.NoteOn, Channel: 4, Note: 60, Velocity: 100}
	if ev != want {
		t.Fatalf("Expected %+v. Got: %+v", want, ev)
	}

	if ev, ok := midi.Decode([]byte{0xB0, 1, 64}); !ok || ev.Type != midi.CC {
		t.Fatalf("Expected a controller. Got: %+v", ev)
	}
	for _, msg := range [][]byte{nil, {0x90, 60}, {0xF0, 0x01, 0xF7}, {0xE0, 0, 64}} {
		if _, ok := midi.Decode(msg); ok {
			t.Fatalf("% X: Expected not ok", msg)
		}
	}
}
