package widgets_test

import (
	"strings"
	"testing"

	"github.com/nyejames/midi-lx/organ"
	"github.com/nyejames/midi-lx/theme"
	"github.com/nyejames/midi-lx/widgets"
)

func TestRenderSlots(t *testing.T) {
	out := widgets.RenderSlots(theme.New(nil), 25, 10, 12)
	if n := strings.Count(out, "\n") + 1; n != 3 {
		t.Fatalf("Expected 3 rows. Got: %d", n)
	}
	if !strings.Contains(out, "▶12") {
		t.Fatalf("last slot not marked: %q", out)
	}
}

func TestRenderStops(t *testing.T) {
	out := widgets.RenderStops(theme.New(nil), map[organ.Stop]bool{
		organ.SwellOboe8:          true,
		organ.PedalOctavePosaune4: false,
	}, 4)
	if !strings.Contains(out, "● ") || !strings.Contains(out, "○ ") {
		t.Fatalf("missing on/off markers: %q", out)
	}
	if !strings.Contains(out, organ.SwellOboe8.String()) {
		t.Fatalf("missing stop name: %q", out)
	}
	if n := strings.Count(out, "\n") + 1; n != (len(organ.Stops())+3)/4 {
		t.Fatalf("Expected %d rows. Got: %d", (len(organ.Stops())+3)/4, n)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := widgets.RenderKeyHelp([]widgets.KeySection{
		{Title: "Desk", Keys: []widgets.KeyBinding{{Key: "d", Desc: "edit desk address"}}},
	})
	if out != "Desk\n  d            edit desk address" {
		t.Fatalf("unexpected help %q", out)
	}
}
