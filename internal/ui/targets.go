package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/spotwatch/internal/state"
)

type column struct {
	title string
	width int
}

var targetColumns = []column{
	{"PLACE", 24},
	{"DATE", 10},
	{"SLOT", 6},
	{"NEED", 4},
	{"FREE", 4},
	{"BOOKED", 9},
	{"STATUS", 11},
	{"CYCLES", 6},
	{"SENT", 4},
}

func (m Model) handleTargetsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CycleFilter):
		m.filterMode = (m.filterMode + 1) % 4
		m.selectedRow = 0
		m.savePrefs()
		return m, nil
	}

	count := len(m.visibleTargets())
	if count == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = count - 1
	}
	return m, nil
}

func (m Model) visibleTargets() []state.TargetStatus {
	if m.filterMode == FilterAll {
		return m.snapshot.Targets
	}
	out := make([]state.TargetStatus, 0, len(m.snapshot.Targets))
	for _, t := range m.snapshot.Targets {
		if matchesFilter(t, m.filterMode) {
			out = append(out, t)
		}
	}
	return out
}

func matchesFilter(t state.TargetStatus, filter TargetFilter) bool {
	switch filter {
	case FilterAvailable:
		return t.Phase == state.PhasePolling && t.Outcome == "available"
	case FilterFailing:
		return t.IsFailing() || t.Phase == state.PhaseRejected
	case FilterStopped:
		return t.Phase != state.PhasePolling
	default:
		return true
	}
}

func (f TargetFilter) String() string {
	switch f {
	case FilterAvailable:
		return "Available"
	case FilterFailing:
		return "Failing"
	case FilterStopped:
		return "Stopped"
	default:
		return "All"
	}
}

func parseFilter(label string) TargetFilter {
	for _, f := range []TargetFilter{FilterAll, FilterAvailable, FilterFailing, FilterStopped} {
		if f.String() == label {
			return f
		}
	}
	return FilterAll
}

func (m *Model) clampSelection() {
	count := len(m.visibleTargets())
	if m.selectedRow >= count {
		m.selectedRow = count - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

func (m Model) selectedTarget() (state.TargetStatus, bool) {
	targets := m.visibleTargets()
	if m.selectedRow < 0 || m.selectedRow >= len(targets) {
		return state.TargetStatus{}, false
	}
	return targets[m.selectedRow], true
}

// statusLabel is the badge text of a target: its phase once it no longer
// polls, otherwise its last outcome.
func statusLabel(t state.TargetStatus) string {
	if t.Phase != state.PhasePolling {
		return string(t.Phase)
	}
	if t.Outcome == "" {
		return "pending"
	}
	return t.Outcome
}

func capacity(t state.TargetStatus) string {
	if t.Total == 0 && t.Booked == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d", t.Booked, t.Total)
}

func (m Model) renderTargets() string {
	height := m.height - 2
	detailHeight := 7
	tableHeight := height - detailHeight
	if tableHeight < 4 {
		tableHeight = height
		detailHeight = 0
	}

	table := m.renderBox(fmt.Sprintf("Targets (%s)", m.filterMode.String()), m.renderTable(tableHeight-2), tableHeight, true)
	if detailHeight == 0 {
		return table
	}
	return table + "\n" + m.renderBox("Detail", m.renderDetail(), detailHeight, false)
}

func (m Model) renderTable(rows int) string {
	styles := m.theme.Styles()
	targets := m.visibleTargets()

	var b strings.Builder
	header := make([]string, 0, len(targetColumns))
	for _, c := range targetColumns {
		header = append(header, padRight(c.title, c.width))
	}
	b.WriteString(styles.MutedText.Bold(true).Render(strings.Join(header, " ")))

	if len(targets) == 0 {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("No targets"))
		return b.String()
	}

	start := 0
	if visible := rows - 1; visible > 0 && m.selectedRow >= visible {
		start = m.selectedRow - visible + 1
	}
	for i := start; i < len(targets) && i-start < rows-1; i++ {
		t := targets[i]
		status := statusLabel(t)
		cells := []string{
			padRight(truncate(t.Place, targetColumns[0].width), targetColumns[0].width),
			padRight(t.Date, targetColumns[1].width),
			padRight(t.TimeSlot, targetColumns[2].width),
			padLeft(fmt.Sprint(t.Threshold), targetColumns[3].width),
			padLeft(fmt.Sprint(t.Free), targetColumns[4].width),
			padLeft(capacity(t), targetColumns[5].width),
		}
		line := strings.Join(cells, " ") + " "
		badge := styles.StatusStyle(status).Render(padRight(status, targetColumns[6].width-2))
		tail := " " + padLeft(fmt.Sprint(t.Cycles), targetColumns[7].width) + " " + padLeft(fmt.Sprint(t.Notifications), targetColumns[8].width)

		b.WriteString("\n")
		if i == m.selectedRow {
			b.WriteString(styles.Selected.Render(line) + badge + styles.Selected.Render(tail))
		} else {
			b.WriteString(styles.Text.Render(line) + badge + styles.Text.Render(tail))
		}
	}
	return b.String()
}

func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	t, ok := m.selectedTarget()
	if !ok {
		return styles.MutedText.Render("Select a target")
	}

	label := styles.FaintText.Width(9)
	lines := []string{
		styles.AccentText.Bold(true).Render(t.Description),
		label.Render("Message") + styles.Text.Render(orDash(t.Message)),
	}
	if t.LastError != "" {
		lines = append(lines, label.Render("Error")+styles.DangerText.Render(t.LastError))
	}
	if t.StopReason != "" && t.Phase != state.PhasePolling {
		lines = append(lines, label.Render("Stopped")+styles.WarningText.Render(t.StopReason))
	}
	updated := "never"
	if !t.LastUpdated.IsZero() {
		updated = humanizeDuration(m.now().Sub(t.LastUpdated)) + " ago"
	}
	lines = append(lines, label.Render("Updated")+styles.MutedText.Render(updated))
	return strings.Join(lines, "\n")
}

func (m Model) renderBox(title, content string, height int, focused bool) string {
	border := m.theme.Border
	if focused {
		border = m.theme.BorderFocus
	}
	styles := m.theme.Styles()
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Width(max(m.width-2, 0)).
		Height(max(height-2, 0)).
		Render(content)

	// Title over the top border.
	lines := strings.SplitN(box, "\n", 2)
	if len(lines) == 2 && title != "" {
		lines[0] = lipgloss.NewStyle().Foreground(lipgloss.Color(border)).Render("╭─ ") +
			styles.AccentText.Bold(true).Render(title) + " " +
			lipgloss.NewStyle().Foreground(lipgloss.Color(border)).Render(strings.Repeat("─", max(m.width-lipgloss.Width(title)-5, 0))+"╮")
		box = lines[0] + "\n" + lines[1]
	}
	return box
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
