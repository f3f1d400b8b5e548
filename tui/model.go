package tui

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nyejames/midi-lx/chamsys"
	"github.com/nyejames/midi-lx/midi"
	"github.com/nyejames/midi-lx/organ"
	"github.com/nyejames/midi-lx/theme"
	"github.com/nyejames/midi-lx/widgets"
)

// historySize is how many recent commands the screen keeps.
const historySize = 8

// slotCount is how many playbacks the slot strip shows.
const slotCount = 80

// Desk is the runtime surface the screen needs.
type Desk interface {
	Reports() <-chan chamsys.Report
	Snapshot() (chamsys.Snapshot, bool)
	SetDeskAddress(addr netip.Addr)
	UpdateMappings(t chamsys.SlotTable)
	Stop()
}

// Organ is the bridge surface the screen needs.
type Organ interface {
	Changes() <-chan organ.StopChange
	States() map[organ.Stop]bool
	Stop()
}

// Options wires the screen. Organ, Devices and Reload may be nil.
type Options struct {
	Desk    Desk
	Organ   Organ
	Devices <-chan midi.DeviceEvent
	Reload  func() (chamsys.SlotTable, error)
	Theme   *theme.Theme
}

type Model struct {
	opts     Options
	input    textinput.Model
	editing  bool
	showOrg  bool
	quitting bool

	snap    chamsys.Snapshot
	history []chamsys.Report
	stops   map[organ.Stop]bool
	device  string
	notice  string
	errMsg  string
}

type ReportMsg chamsys.Report

type SnapshotMsg chamsys.Snapshot

type StopChangeMsg organ.StopChange

type StopsMsg map[organ.Stop]bool

type DeviceEventMsg midi.DeviceEvent

// closedMsg is sent when a feed channel closes; that feed is not re-armed.
type closedMsg struct{ feed string }

func NewModel(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = theme.New(nil)
	}
	ti := textinput.New()
	ti.Placeholder = "10.0.0.1"
	ti.Prompt = "desk ip: "
	ti.CharLimit = 15
	ti.Width = 16
	return Model{
		opts:  opts,
		input: ti,
		stops: make(map[organ.Stop]bool),
	}
}

func ListenForReports(desk Desk) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-desk.Reports()
		if !ok {
			return closedMsg{feed: "reports"}
		}
		return ReportMsg(r)
	}
}

func FetchSnapshot(desk Desk) tea.Cmd {
	return func() tea.Msg {
		snap, ok := desk.Snapshot()
		if !ok {
			return closedMsg{feed: "snapshot"}
		}
		return SnapshotMsg(snap)
	}
}

func ListenForStops(org Organ) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-org.Changes()
		if !ok {
			return closedMsg{feed: "organ"}
		}
		return StopChangeMsg(c)
	}
}

func FetchStops(org Organ) tea.Cmd {
	return func() tea.Msg {
		return StopsMsg(org.States())
	}
}

func ListenForDevices(events <-chan midi.DeviceEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return closedMsg{feed: "devices"}
		}
		return DeviceEventMsg(ev)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForReports(m.opts.Desk), FetchSnapshot(m.opts.Desk)}
	if m.opts.Organ != nil {
		cmds = append(cmds, ListenForStops(m.opts.Organ), FetchStops(m.opts.Organ))
	}
	if m.opts.Devices != nil {
		cmds = append(cmds, ListenForDevices(m.opts.Devices))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.opts.Desk.Stop()
			if m.opts.Organ != nil {
				m.opts.Organ.Stop()
			}
			return m, tea.Quit

		case "d":
			m.editing = true
			m.errMsg = ""
			if m.snap.Desk.Addr().IsValid() {
				m.input.SetValue(m.snap.Desk.Addr().String())
			}
			return m, m.input.Focus()

		case "r":
			if m.opts.Reload == nil {
				m.errMsg = "no config to reload"
				return m, nil
			}
			table, err := m.opts.Reload()
			if err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.opts.Desk.UpdateMappings(table)
			m.notice = fmt.Sprintf("mappings reloaded (%d entries)", len(table))
			m.errMsg = ""
			return m, FetchSnapshot(m.opts.Desk)

		case "o":
			if m.opts.Organ != nil {
				m.showOrg = !m.showOrg
			}
		}

	case ReportMsg:
		m.history = append(m.history, chamsys.Report(msg))
		if len(m.history) > historySize {
			m.history = m.history[len(m.history)-historySize:]
		}
		return m, tea.Batch(ListenForReports(m.opts.Desk), FetchSnapshot(m.opts.Desk))

	case SnapshotMsg:
		m.snap = chamsys.Snapshot(msg)

	case StopChangeMsg:
		c := organ.StopChange(msg)
		if c.Err == nil {
			m.stops[c.Stop] = c.On
		} else {
			m.errMsg = fmt.Sprintf("%s: %v", c.Stop, c.Err)
		}
		return m, ListenForStops(m.opts.Organ)

	case StopsMsg:
		for k, v := range msg {
			m.stops[k] = v
		}

	case DeviceEventMsg:
		ev := midi.DeviceEvent(msg)
		if ev.Type == midi.DeviceConnected {
			m.device = ev.Name
		} else if m.device == ev.Name {
			m.device = ""
		}
		return m, ListenForDevices(m.opts.Devices)

	case closedMsg:
		if msg.feed == "reports" && !m.quitting {
			m.errMsg = "desk runtime stopped"
		}
	}

	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		m.input.Reset()
		return m, nil

	case "enter":
		addr, err := netip.ParseAddr(strings.TrimSpace(m.input.Value()))
		if err != nil || !addr.Unmap().Is4() {
			m.errMsg = fmt.Sprintf("not an IPv4 address: %q", m.input.Value())
			return m, nil
		}
		m.opts.Desk.SetDeskAddress(addr.Unmap())
		m.editing = false
		m.input.Blur()
		m.input.Reset()
		m.errMsg = ""
		m.notice = "desk address set to " + addr.Unmap().String()
		return m, FetchSnapshot(m.opts.Desk)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	th := m.opts.Theme

	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	okStyle := lipgloss.NewStyle().Foreground(th.Success())
	errStyle := lipgloss.NewStyle().Foreground(th.Error())

	desk := "no desk"
	if m.snap.Desk.Addr().IsValid() {
		desk = m.snap.Desk.String()
	}
	mode := "raw"
	if m.snap.Framed {
		mode = fmt.Sprintf("framed seq %d/%d", m.snap.Seq.Forward, m.snap.Seq.Backward)
	}
	device := "no input"
	if m.device != "" {
		device = m.device
	}
	local := "-"
	if m.snap.Local.IsValid() {
		local = m.snap.Local.String()
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(fmt.Sprintf("midi-lx  %s  %s", desk, mode)))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(fmt.Sprintf("from %s  input %s  mappings %d", local, device, len(m.snap.Mappings))))
	out.WriteString("\n\n")

	if m.showOrg {
		out.WriteString(widgets.RenderStops(th, m.stops, 3))
	} else {
		out.WriteString(widgets.RenderSlots(th, slotCount, 20, m.snap.PrevSlot))
		out.WriteString("\n\n")
		for _, r := range m.history {
			line := fmt.Sprintf("% X  ->  %s", r.Input, r.Command)
			if r.Err != nil {
				out.WriteString(errStyle.Render(fmt.Sprintf("% X  !  %v", r.Input, r.Err)))
			} else {
				out.WriteString(okStyle.Render(line))
			}
			out.WriteString("\n")
		}
	}
	out.WriteString("\n")

	if m.editing {
		out.WriteString(m.input.View())
		out.WriteString("\n")
	}
	if m.errMsg != "" {
		out.WriteString(errStyle.Render(m.errMsg))
		out.WriteString("\n")
	} else if m.notice != "" {
		out.WriteString(dimStyle.Render(m.notice))
		out.WriteString("\n")
	}

	keys := "d:desk ip  r:reload mappings  q:quit"
	if m.opts.Organ != nil {
		keys = "d:desk ip  r:reload mappings  o:organ  q:quit"
	}
	out.WriteString(dimStyle.Render(keys))
	return out.String()
}
