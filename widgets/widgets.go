package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nyejames/midi-lx/organ"
	"github.com/nyejames/midi-lx/theme"
)

// RenderSlots renders playbacks 1..count in rows of perRow, marking the last
// touched slot.
func RenderSlots(th *theme.Theme, count, perRow int, last uint8) string {
	if perRow <= 0 {
		perRow = 10
	}
	lastStyle := lipgloss.NewStyle().Foreground(th.Active()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())

	var lines []string
	var line strings.Builder
	for slot := 1; slot <= count; slot++ {
		if slot == int(last) {
			line.WriteString(lastStyle.Render(fmt.Sprintf("%c%-3d", th.Symbols.Last, slot)))
		} else {
			line.WriteString(dimStyle.Render(fmt.Sprintf(" %-3d", slot)))
		}
		if slot%perRow == 0 {
			lines = append(lines, line.String())
			line.Reset()
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderStops lists every stop with its known state, in columns.
func RenderStops(th *theme.Theme, states map[organ.Stop]bool, columns int) string {
	if columns <= 0 {
		columns = 3
	}
	onStyle := lipgloss.NewStyle().Foreground(th.Success())
	offStyle := lipgloss.NewStyle().Foreground(th.FG())
	unknownStyle := lipgloss.NewStyle().Foreground(th.Muted())

	stops := organ.Stops()
	cells := make([]string, len(stops))
	for i, s := range stops {
		label := fmt.Sprintf("%3d %-28s", s.ID(), s.String())
		on, known := states[s]
		switch {
		case !known:
			cells[i] = unknownStyle.Render(fmt.Sprintf("%c %s", th.Symbols.Unknown, label))
		case on:
			cells[i] = onStyle.Render(fmt.Sprintf("%c %s", th.Symbols.On, label))
		default:
			cells[i] = offStyle.Render(fmt.Sprintf("%c %s", th.Symbols.Off, label))
		}
	}

	rows := (len(cells) + columns - 1) / columns
	var lines []string
	for r := 0; r < rows; r++ {
		var row []string
		for c := 0; c < columns; c++ {
			if i := c*rows + r; i < len(cells) {
				row = append(row, cells[i])
			}
		}
		lines = append(lines, strings.Join(row, " "))
	}
	return strings.Join(lines, "\n")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
