package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/logtail"
)

// logState holds the tail of shelf's log file.
type logState struct {
	entries []logtail.Entry
	err     error
	follow  bool
	dirty   bool
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-4, 1), max(m.contentHeight()-3, 1))
}

// updateLogViewport resizes the viewport and re-renders when entries changed.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	// Box inner height minus the status line below the box.
	m.logViewport.Width = max(m.width-4, 1)
	m.logViewport.Height = max(m.contentHeight()-3, 1)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if m.logState.dirty {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.dirty = false
	}
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// loadLogsCmd reads the log tail off the UI goroutine.
func (m Model) loadLogsCmd() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		if path == "" {
			return logsMsg{}
		}
		lines, err := logtail.Read(path, LogTailLines)
		if err != nil {
			return logsMsg{err: err}
		}
		return logsMsg{entries: logtail.ParseLines(lines)}
	}
}

func (m *Model) handleLogs(msg logsMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.entries = msg.entries
	}
	m.logState.dirty = true
	m.updateLogViewport()
}

// renderLogs renders the log view with a status line below the box.
func (m Model) renderLogs() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	title := "Logs · " + truncateMiddle(m.logPath, max(m.width/2, 10))
	box := m.renderTitledBox(title, m.logViewport.View(), m.width, m.contentHeight()-1, true)

	follow := bg.Render("paused", styles.WarningText)
	if m.logState.follow {
		follow = bg.Render("following", styles.SuccessText)
	}
	parts := []string{
		follow,
		bg.Render(fmt.Sprintf("%d %s", len(m.logState.entries), plural(len(m.logState.entries), "line")), styles.MutedText),
	}
	if m.logState.err != nil {
		parts = append(parts, bg.Render(truncate(m.logState.err.Error(), 60), styles.DangerText))
	}
	status := styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
	return box + "\n" + status
}

// renderLogContent colorizes entries by level.
func (m Model) renderLogContent() string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)

	if len(m.logState.entries) == 0 {
		return bg.Render("No log entries yet.", styles.FaintText)
	}

	lines := make([]string, 0, len(m.logState.entries))
	for _, e := range m.logState.entries {
		if e.Raw != "" {
			lines = append(lines, bg.Render(e.Raw, styles.MutedText))
			continue
		}
		var b strings.Builder
		if !e.Time.IsZero() {
			b.WriteString(bg.Render(e.Time.In(m.location).Format("15:04:05"), styles.FaintText))
			b.WriteString(bg.Space())
		}
		b.WriteString(bg.Render(padRight(strings.ToUpper(e.Level), 5), m.levelStyle(e.Level, styles)))
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(e.Message, styles.Text))
		for _, k := range e.FieldKeys() {
			b.WriteString(bg.Space())
			b.WriteString(bg.Render(k+"=", styles.FaintText))
			b.WriteString(bg.Render(e.Fields[k], styles.MutedText))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func (m Model) levelStyle(level string, styles Styles) lipgloss.Style {
	switch strings.ToLower(level) {
	case "error", "dpanic", "panic", "fatal":
		return styles.DangerText
	case "warn", "warning":
		return styles.WarningText
	case "debug":
		return styles.FaintText
	default:
		return styles.InfoText
	}
}

// handleLogsKey processes keyboard input for the logs view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			return m, m.loadLogsCmd()
		}
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logState.follow = true
		m.logViewport.GotoBottom()
	case key.Matches(msg, m.keys.Down):
		m.logViewport.LineDown(1)
	case key.Matches(msg, m.keys.Up):
		m.logState.follow = false
		m.logViewport.LineUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfViewDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logState.follow = false
		m.logViewport.HalfViewUp()
	}
	return m, nil
}
