package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/javiermolinar/spotgrid/internal/aggregate"
	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/summary"
)

// heatmapOpts configures heatmap rendering.
type heatmapOpts struct {
	CellWidth int
	AllSlots  bool // show all 48 rows instead of the busy span
}

// Background shades from light to heavy load.
var heatLevels = []lipgloss.Color{"#1f3b2d", "#2e6b47", "#d19a2a", "#c2412d"}

const labelWidth = 7

func cellWidthFor(termWidth int) int {
	switch {
	case termWidth >= labelWidth+7*6+4:
		return 6
	case termWidth >= labelWidth+7*4+4:
		return 4
	default:
		return 3
	}
}

// heatLevel maps a play count to an index into heatLevels.
func heatLevel(count int) int {
	switch {
	case count <= 1:
		return 0
	case count <= 3:
		return 1
	case count <= 6:
		return 2
	default:
		return 3
	}
}

// busySpan returns the first and last rows holding any play.
func busySpan(m [grid.DaysPerWeek][grid.SlotsPerDay]int) (first, last int, ok bool) {
	first, last = grid.SlotsPerDay, -1
	for _, col := range m {
		for idx, n := range col {
			if n == 0 {
				continue
			}
			first = min(first, idx)
			last = max(last, idx)
		}
	}
	return first, last, last >= 0
}

// renderHeatmap draws one row per slot and one column per day.
func renderHeatmap(s *summary.WeekSummary, opts heatmapOpts) string {
	width := max(opts.CellWidth, 3)
	m := aggregate.Matrix(s.Slots, s.Dates)

	first, last := 0, grid.MaxSlotIndex
	if !opts.AllSlots {
		var ok bool
		if first, last, ok = busySpan(m); !ok {
			first, last = 0, grid.MaxSlotIndex
		}
	}

	plain := color.NoColor
	label := lipgloss.NewStyle().Width(labelWidth)
	cell := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	header := cell.Bold(true)
	empty := cell.Faint(true)

	var b strings.Builder

	b.WriteString(label.Render(""))
	for i, d := range s.Dates {
		name := dayAbbrev[i]
		if width >= 6 {
			name += " " + d[8:]
		}
		b.WriteString(header.Render(name))
	}
	b.WriteString("\n")

	for idx := first; idx <= last; idx++ {
		b.WriteString(label.Render(grid.SlotTime(idx)))
		for day := range grid.DaysPerWeek {
			n := m[day][idx]
			switch {
			case n == 0:
				b.WriteString(empty.Render("·"))
			case plain:
				b.WriteString(cell.Render(strconv.Itoa(n)))
			default:
				b.WriteString(cell.Background(heatLevels[heatLevel(n)]).Foreground(lipgloss.Color("#f5f5f5")).Render(strconv.Itoa(n)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(label.Render("total"))
	for _, n := range s.DayTotals {
		b.WriteString(header.Render(strconv.Itoa(n)))
	}

	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return box.Render(b.String())
}

var dayAbbrev = [grid.DaysPerWeek]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
