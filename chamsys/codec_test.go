package chamsys_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nyejames/midi-lx/chamsys"
)

func TestEncodeRaw(t *testing.T) {
	if got := chamsys.EncodeRaw("12A"); !bytes.Equal(got, []byte("12A")) {
		t.Fatalf("Expected 12A. Got: %q", got)
	}
}

func TestEncodeFramed(t *testing.T) {
	got, err := chamsys.EncodeFramed("1,64L", 7, 3)
	if err != nil {
		t.Fatalf("Expected nil. Got: %v", err)
	}
	want := []byte{'C', 'R', 'E', 'P', 0x00, 0x00, 7, 3, 0x00, 0x05, '1', ',', '6', '4', 'L'}
	if !bytes.Equal(got, want) {
		t.Fatalf("Expected % X. Got: % X", want, got)
	}

	hdr, payload, err := chamsys.DecodeFramed(got)
	if err != nil {
		t.Fatalf("Expected nil. Got: %v", err)
	}
	if hdr.SeqFwd != 7 || hdr.SeqBkwd != 3 || hdr.Version != 0 || hdr.Length != 5 {
		t.Fatalf("unexpected header %+v", hdr)
	}
	if string(payload) != "1,64L" {
		t.Fatalf("Expected 1,64L. Got: %q", payload)
	}
}

func TestEncodeFramedLengthLimit(t *testing.T) {
	if _, err := chamsys.EncodeFramed(strings.Repeat("A", 65535), 0, 0); err != nil {
		t.Fatalf("Expected nil at the limit. Got: %v", err)
	}
	_, err := chamsys.EncodeFramed(strings.Repeat("A", 65536), 0, 0)
	if !errors.Is(err, chamsys.ErrPayloadTooLarge) {
		t.Fatalf("Expected ErrPayloadTooLarge. Got: %v", err)
	}
}

func TestDecodeFramedErrors(t *testing.T) {
	good, _ := chamsys.EncodeFramed("5A", 0, 0)

	bad := append([]byte(nil), good...)
	bad[0] = 'X'

	for name, tc := range map[string]struct {
		in   []byte
		want error
	}{
		"short":     {in: good[:4], want: chamsys.ErrShortPacket},
		"magic":     {in: bad, want: chamsys.ErrBadMagic},
		"truncated": {in: good[:len(good)-1], want: chamsys.ErrLengthMismatch},
	} {
		t.Run(name, func(t *testing.T) {
			if _, _, err := chamsys.DecodeFramed(tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("Expected %v. Got: %v", tc.want, err)
			}
		})
	}
}

func TestSequenceWraps(t *testing.T) {
	seq := chamsys.Sequence{Forward: 200, Backward: 9}
	for i := 0; i < 256; i++ {
		fwd, bkwd := seq.Next()
		if fwd != uint8(200+i) {
			t.Fatalf("step %d: Expected forward %d. Got: %d", i, uint8(200+i), fwd)
		}
		if bkwd != 9 {
			t.Fatalf("step %d: backward moved to %d", i, bkwd)
		}
	}
	if seq.Forward != 200 {
		t.Fatalf("Expected forward back at 200 after 256 sends. Got: %d", seq.Forward)
	}
}
