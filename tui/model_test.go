package tui_test

import (
	"errors"
	"net/netip"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nyejames/midi-lx/chamsys"
	"github.com/nyejames/midi-lx/midi"
	"github.com/nyejames/midi-lx/organ"
	"github.com/nyejames/midi-lx/tui"
)

type fakeDesk struct {
	reports chan chamsys.Report
	desk    netip.Addr
	table   chamsys.SlotTable
	stopped bool
}

func newFakeDesk() *fakeDesk {
	return &fakeDesk{reports: make(chan chamsys.Report, 4)}
}

func (d *fakeDesk) Reports() <-chan chamsys.Report { return d.reports }

func (d *fakeDesk) Snapshot() (chamsys.Snapshot, bool) {
	return chamsys.Snapshot{Desk: netip.AddrPortFrom(d.desk, chamsys.DefaultPort), Mappings: d.table}, true
}

func (d *fakeDesk) SetDeskAddress(addr netip.Addr)     { d.desk = addr }
func (d *fakeDesk) UpdateMappings(t chamsys.SlotTable) { d.table = t }
func (d *fakeDesk) Stop()                              { d.stopped = true }

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func typeText(m tea.Model, s string) tea.Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestEditDeskAddress(t *testing.T) {
	desk := newFakeDesk()
	var m tea.Model = tui.NewModel(tui.Options{Desk: desk})

	m = update(m, key("d"))
	m = typeText(m, "10.0.0.42")
	m = update(m, key("enter"))

	if desk.desk.String() != "10.0.0.42" {
		t.Fatalf("Expected 10.0.0.42. Got: %v", desk.desk)
	}
	if !strings.Contains(m.View(), "desk address set to 10.0.0.42") {
		t.Fatalf("missing notice in %q", m.View())
	}
}

func TestEditDeskAddressRejects(t *testing.T) {
	desk := newFakeDesk()
	var m tea.Model = tui.NewModel(tui.Options{Desk: desk})

	m = update(m, key("d"))
	m = typeText(m, "nope")
	m = update(m, key("enter"))

	if desk.desk.IsValid() {
		t.Fatalf("Expected no desk change. Got: %v", desk.desk)
	}
	if !strings.Contains(m.View(), "not an IPv4 address") {
		t.Fatalf("missing error in %q", m.View())
	}

	m = update(m, key("esc"), key("q"))
	if !desk.stopped {
		t.Fatal("Expected q to stop the desk once editing is cancelled")
	}
}

func TestReloadMappings(t *testing.T) {
	desk := newFakeDesk()
	reload := func() (chamsys.SlotTable, error) {
		return chamsys.SlotTable{48: chamsys.SetIntensity}, nil
	}
	var m tea.Model = tui.NewModel(tui.Options{Desk: desk, Reload: reload})
	m = update(m, key("r"))
	if desk.table[48] != chamsys.SetIntensity {
		t.Fatalf("unexpected table %v", desk.table)
	}

	failing := func() (chamsys.SlotTable, error) { return nil, errors.New("bad yaml") }
	m = tui.NewModel(tui.Options{Desk: desk, Reload: failing})
	m = update(m, key("r"))
	if !strings.Contains(m.View(), "bad yaml") {
		t.Fatalf("missing error in %q", m.View())
	}
}

func TestHistoryAndDevices(t *testing.T) {
	desk := newFakeDesk()
	var m tea.Model = tui.NewModel(tui.Options{Desk: desk})

	m = update(m,
		tui.ReportMsg{Input: []byte{0x90, 48, 100}, Command: "1A"},
		tui.ReportMsg{Input: []byte{0x90}, Err: chamsys.ErrMalformedMessage},
		tui.DeviceEventMsg{Type: midi.DeviceConnected, Name: "Launchkey"},
	)
	view := m.View()
	for _, want := range []string{"90 30 64  ->  1A", "malformed", "input Launchkey"} {
		if !strings.Contains(view, want) {
			t.Fatalf("missing %q in %q", want, view)
		}
	}

	m = update(m, tui.DeviceEventMsg{Type: midi.DeviceDisconnected, Name: "Launchkey"})
	if !strings.Contains(m.View(), "no input") {
		t.Fatalf("device still shown in %q", m.View())
	}
}

type fakeOrgan struct {
	changes chan organ.StopChange
	stopped bool
}

func (o *fakeOrgan) Changes() <-chan organ.StopChange { return o.changes }
func (o *fakeOrgan) States() map[organ.Stop]bool      { return nil }
func (o *fakeOrgan) Stop()                            { o.stopped = true }

func TestOrganView(t *testing.T) {
	desk := newFakeDesk()
	org := &fakeOrgan{changes: make(chan organ.StopChange)}
	var m tea.Model = tui.NewModel(tui.Options{Desk: desk, Organ: org})

	m = update(m, tui.StopChangeMsg{Stop: organ.SwellOboe8, On: true}, key("o"))
	if !strings.Contains(m.View(), "● ") || !strings.Contains(m.View(), organ.SwellOboe8.String()) {
		t.Fatalf("organ view missing stop in %q", m.View())
	}

	update(m, key("q"))
	if !desk.stopped || !org.stopped {
		t.Fatal("Expected quit to stop both runtimes")
	}
}
