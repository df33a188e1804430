package ui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/spotwatch/internal/logtail"
)

const logBufferLimit = 2000

type logState struct {
	lines  []string
	err    error
	follow bool
	dirty  bool

	searchActive bool
	searchInput  textinput.Model
	searchQuery  string
	searchRegex  *regexp.Regexp
	matches      []int
	matchIdx     int
}

type logLinesMsg struct {
	lines []string
	err   error
}

func newLogState() logState {
	ti := textinput.New()
	ti.Placeholder = "Search logs..."
	ti.CharLimit = 100
	return logState{follow: true, searchInput: ti}
}

func (m Model) refreshLogs() tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	path := m.logPath
	return func() tea.Msg {
		lines, err := logtail.Read(path, logBufferLimit)
		return logLinesMsg{lines: lines, err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.lines = msg.lines
	}
	m.logState.dirty = true
	m.findMatches()
	m.updateLogViewport()
}

func (m *Model) updateLogViewport() {
	width := max(m.width-4, 0)
	height := max(m.height-5, 0)
	if m.logViewport.Width == 0 && m.logViewport.Height == 0 {
		m.logViewport = viewport.New(width, height)
	}
	m.logViewport.Width = width
	m.logViewport.Height = height

	if m.logState.dirty {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.dirty = false
	}
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if m.logPath == "" {
		return styles.MutedText.Render("Logging to stderr; set log_file to view logs here")
	}
	if m.logState.err != nil {
		return styles.DangerText.Render(m.logState.err.Error())
	}
	if len(m.logState.lines) == 0 {
		return styles.MutedText.Render("No log entries")
	}

	active := -1
	if len(m.logState.matches) > 0 {
		active = m.logState.matches[m.logState.matchIdx]
	}
	matched := make(map[int]bool, len(m.logState.matches))
	for _, i := range m.logState.matches {
		matched[i] = true
	}

	var b strings.Builder
	for i, line := range m.logState.lines {
		if i > 0 {
			b.WriteString("\n")
		}
		switch {
		case i == active:
			b.WriteString(lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.Warning)).
				Foreground(lipgloss.Color(m.theme.Background)).
				Render(line))
		case matched[i]:
			b.WriteString(styles.AccentText.Render(line))
		default:
			b.WriteString(m.levelStyle(line).Render(line))
		}
	}
	return b.String()
}

func (m Model) levelStyle(line string) lipgloss.Style {
	styles := m.theme.Styles()
	switch logtail.Level(line) {
	case "WARN":
		return styles.WarningText
	case "ERROR":
		return styles.DangerText
	case "DEBUG":
		return styles.FaintText
	default:
		return styles.Text
	}
}

func (m Model) renderLogs() string {
	title := "Log"
	if m.logPath != "" {
		title = "Log " + truncate(m.logPath, 60)
	}
	box := m.renderBox(title, m.logViewport.View(), m.height-3, true)
	return box + "\n" + m.renderLogStatus()
}

func (m Model) renderLogStatus() string {
	styles := m.theme.Styles()
	if m.logState.searchActive {
		return "/" + m.logState.searchInput.View()
	}
	if m.logState.searchRegex != nil {
		if len(m.logState.matches) == 0 {
			return styles.WarningText.Render(fmt.Sprintf("/%s - no matches", m.logState.searchQuery))
		}
		return styles.AccentText.Render("/"+m.logState.searchQuery) +
			styles.FaintText.Render(" - ") +
			styles.WarningText.Render(fmt.Sprintf("%d/%d", m.logState.matchIdx+1, len(m.logState.matches)))
	}
	follow := "paused"
	if m.logState.follow {
		follow = "following"
	}
	return styles.MutedText.Render(fmt.Sprintf("%d lines, %s", len(m.logState.lines), follow))
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		m.savePrefs()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.logState.searchActive = true
		m.logState.searchInput.SetValue("")
		m.logState.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.NextMatch):
		m.stepMatch(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevMatch):
		m.stepMatch(-1)
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logState.follow = false
		m.logViewport.HalfViewUp()
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		m.clearSearch()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		m.applySearch(m.logState.searchInput.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.logState.searchInput, cmd = m.logState.searchInput.Update(msg)
	return m, cmd
}

// applySearch compiles query as a case-insensitive regexp, falling back to a
// literal match when it does not compile.
func (m *Model) applySearch(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		m.clearSearch()
		return
	}
	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
	}
	m.logState.searchQuery = query
	m.logState.searchRegex = re
	m.logState.follow = false
	m.findMatches()
	if len(m.logState.matches) > 0 {
		m.logState.matchIdx = len(m.logState.matches) - 1
	}
	m.logState.dirty = true
	m.updateLogViewport()
	m.scrollToMatch()
}

func (m *Model) clearSearch() {
	m.logState.searchQuery = ""
	m.logState.searchRegex = nil
	m.logState.matches = nil
	m.logState.matchIdx = 0
	m.logState.dirty = true
	m.updateLogViewport()
}

func (m *Model) findMatches() {
	m.logState.matches = m.logState.matches[:0]
	if m.logState.searchRegex == nil {
		return
	}
	for i, line := range m.logState.lines {
		if m.logState.searchRegex.MatchString(line) {
			m.logState.matches = append(m.logState.matches, i)
		}
	}
	if m.logState.matchIdx >= len(m.logState.matches) {
		m.logState.matchIdx = 0
	}
}

func (m *Model) stepMatch(delta int) {
	n := len(m.logState.matches)
	if n == 0 {
		return
	}
	m.logState.matchIdx = (m.logState.matchIdx + delta + n) % n
	m.logState.dirty = true
	m.updateLogViewport()
	m.scrollToMatch()
}

func (m *Model) scrollToMatch() {
	if len(m.logState.matches) == 0 {
		return
	}
	line := m.logState.matches[m.logState.matchIdx]
	m.logViewport.SetYOffset(max(line-m.logViewport.Height/2, 0))
}
