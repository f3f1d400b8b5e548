package chamsys_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nyejames/midi-lx/chamsys"
)

func TestTranslateScenarios(t *testing.T) {
	var prev uint8

	cmd, ok, err := chamsys.Translate([]byte{0x90, 48, 100}, &prev, nil)
	if err != nil || !ok || cmd != "1A" || prev != 1 {
		t.Fatalf("note on: cmd=%q ok=%v err=%v prev=%d", cmd, ok, err, prev)
	}

	cmd, ok, err = chamsys.Translate([]byte{0x80, 48, 0}, &prev, nil)
	if err != nil || !ok || cmd != "1R" {
		t.Fatalf("note off: cmd=%q ok=%v err=%v", cmd, ok, err)
	}

	cmd, ok, err = chamsys.Translate([]byte{0xB0, 0, 64}, &prev, nil)
	if err != nil || !ok || cmd != "1,64L" || prev != 1 {
		t.Fatalf("wheel: cmd=%q ok=%v err=%v prev=%d", cmd, ok, err, prev)
	}
}

func TestTranslateNotes(t *testing.T) {
	for status := 0x80; status <= 0x9F; status++ {
		letter := "R"
		if status >= 0x90 {
			letter = "A"
		}
		for note := 0; note < 256; note++ {
			prev := uint8(77)
			cmd, ok, err := chamsys.Translate([]byte{byte(status), byte(note), 1}, &prev, nil)
			if err != nil {
				t.Fatalf("status %d note %d: %v", status, note, err)
			}
			if note < 48 {
				if ok || prev != 77 {
					t.Fatalf("status %d note %d: expected nothing, got %q prev=%d", status, note, cmd, prev)
				}
				continue
			}
			want := fmt.Sprintf("%d%s", note-47, letter)
			if !ok || cmd != want || int(prev) != note-47 {
				t.Fatalf("status %d note %d: Expected %q. Got: %q prev=%d", status, note, want, cmd, prev)
			}
		}
	}
}

func TestTranslateWheelKeepsSlot(t *testing.T) {
	for v := 0; v < 256; v++ {
		prev := uint8(12)
		cmd, ok, err := chamsys.Translate([]byte{0xB0, 1, byte(v)}, &prev, nil)
		want := fmt.Sprintf("12,%dL", v)
		if err != nil || !ok || cmd != want || prev != 12 {
			t.Fatalf("value %d: Expected %q. Got: %q ok=%v err=%v prev=%d", v, want, cmd, ok, err, prev)
		}
	}
}

func TestTranslateIgnoresOtherStatus(t *testing.T) {
	for status := 0; status < 256; status++ {
		if status >= 0x80 && status <= 0x9F || status == 0xB0 {
			continue
		}
		prev := uint8(3)
		cmd, ok, err := chamsys.Translate([]byte{byte(status), 60, 60}, &prev, nil)
		if err != nil || ok || prev != 3 {
			t.Fatalf("status %d: cmd=%q ok=%v err=%v prev=%d", status, cmd, ok, err, prev)
		}
	}
}

func TestTranslateMalformed(t *testing.T) {
	var prev uint8
	for _, msg := range [][]byte{nil, {}, {0x90}, {0xB0, 7}} {
		if _, _, err := chamsys.Translate(msg, &prev, nil); !errors.Is(err, chamsys.ErrMalformedMessage) {
			t.Fatalf("% X: Expected ErrMalformedMessage. Got: %v", msg, err)
		}
	}

	// notes only need a status and a note number
	cmd, ok, err := chamsys.Translate([]byte{0x91, 50}, &prev, nil)
	if err != nil || !ok || cmd != "3A" {
		t.Fatalf("two byte note: cmd=%q ok=%v err=%v", cmd, ok, err)
	}
}

func TestTranslateSlotTable(t *testing.T) {
	table := chamsys.SlotTable{
		48: chamsys.Activate,
		49: chamsys.Deactivate,
		50: chamsys.SetIntensity,
	}

	for _, tc := range []struct {
		msg  []byte
		want string
		ok   bool
	}{
		{msg: []byte{0x90, 48, 100}, want: "1A", ok: true},
		{msg: []byte{0x80, 48, 0}, ok: false},
		{msg: []byte{0x90, 49, 100}, want: "2R", ok: true},
		{msg: []byte{0x80, 49, 0}, ok: false},
		{msg: []byte{0x90, 50, 100}, want: "3,100L", ok: true},
		{msg: []byte{0x80, 50, 64}, want: "3,0L", ok: true},
		{msg: []byte{0x90, 51, 100}, want: "4A", ok: true},
	} {
		var prev uint8
		cmd, ok, err := chamsys.Translate(tc.msg, &prev, table)
		if err != nil || ok != tc.ok || cmd != tc.want {
			t.Fatalf("% X: Expected %q/%v. Got: %q/%v err=%v", tc.msg, tc.want, tc.ok, cmd, ok, err)
		}
		if want := tc.msg[1] - 47; prev != want {
			t.Fatalf("% X: Expected prev %d. Got: %d", tc.msg, want, prev)
		}
	}
}

func TestParseSlotTable(t *testing.T) {
	table, err := chamsys.ParseSlotTable(map[int]string{48: "activate", 60: "Release", 61: "intensity"})
	if err != nil {
		t.Fatalf("Expected nil. Got: %v", err)
	}
	if table[48] != chamsys.Activate || table[60] != chamsys.Deactivate || table[61] != chamsys.SetIntensity {
		t.Fatalf("unexpected table %v", table)
	}

	if _, err := chamsys.ParseSlotTable(map[int]string{48: "explode"}); err == nil {
		t.Fatal("Expected error for unknown action")
	}
	if _, err := chamsys.ParseSlotTable(map[int]string{300: "activate"}); err == nil {
		t.Fatal("Expected error for out of range note")
	}
}
