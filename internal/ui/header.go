package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/spotwatch/internal/state"
)

// headerCounts summarizes the snapshot for the status bar.
type headerCounts struct {
	polling   int
	available int
	failing   int
	stopped   int
	rejected  int
}

func countTargets(snap state.Snapshot) headerCounts {
	var c headerCounts
	for _, t := range snap.Targets {
		switch t.Phase {
		case state.PhasePolling:
			c.polling++
			if t.Outcome == "available" {
				c.available++
			}
			if t.IsFailing() {
				c.failing++
			}
		case state.PhaseStopped:
			c.stopped++
		case state.PhaseRejected:
			c.rejected++
		}
	}
	return c
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBgStyle(m.theme.Surface)
	counts := countTargets(m.snapshot)

	parts := []string{bg.Render("spotwatch", styles.Logo)}
	if counts.polling > 0 {
		parts = append(parts, bg.Render("● WATCHING", styles.SuccessText))
	} else {
		parts = append(parts, bg.Render("● IDLE", styles.DangerText))
	}
	parts = append(parts, bg.Render("Targets:", styles.MutedText)+bg.Spaces(1)+
		bg.Render(fmt.Sprint(counts.polling), styles.Text))

	if counts.available > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("Open: %d", counts.available), styles.SuccessText))
	}
	if counts.failing > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("Failing: %d", counts.failing), styles.WarningText))
	}
	if counts.stopped > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("Stopped: %d", counts.stopped), styles.DangerText))
	}
	if counts.rejected > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("Rejected: %d", counts.rejected), styles.DangerText))
	}
	if m.delay > 0 && m.width >= 100 {
		parts = append(parts, bg.Render("every "+m.delay.String(), styles.MutedText))
	}
	if id := m.snapshot.RunID; id != "" && m.width >= 100 {
		parts = append(parts, bg.Render("run "+truncate(id, 8), styles.FaintText))
	}
	if !m.lastUpdated.IsZero() {
		parts = append(parts, bg.Render(m.lastUpdated.Format("15:04:05"), styles.MutedText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		Render(styles.Header.Render(bg.Join(parts, "  ")))
}

// renderCommandBar lists the main key bindings.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := newBgStyle(m.theme.SurfaceAlt)

	item := func(k, label string, active bool) string {
		labelStyle := styles.MutedText
		if active {
			labelStyle = styles.AccentText.Bold(true)
		}
		return bg.Render("<"+k+">", styles.WarningText) + bg.Spaces(1) + bg.Render(label, labelStyle)
	}
	parts := []string{
		item("t", "Targets", m.currentView == ViewTargets),
		item("l", "Logs", m.currentView == ViewLogs),
		item("f", "Filter: "+m.filterMode.String(), m.filterMode != FilterAll),
		item("T", m.theme.Name, false),
		item("?", "Help", false),
		item("e", "Quit", false),
	}
	return bg.Fill(bg.Spaces(1)+bg.Join(parts, "  "), m.width)
}
