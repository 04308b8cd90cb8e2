package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/shelf"
)

func (m *Model) initPaceViewport() {
	m.paceViewport = viewport.New(max(m.width-4, 1), max(m.contentHeight()-2, 1))
}

// updatePaceViewport re-renders the chart into the viewport.
func (m *Model) updatePaceViewport() {
	if !m.ready {
		return
	}
	m.paceViewport.Width = max(m.width-4, 1)
	m.paceViewport.Height = max(m.contentHeight()-2, 1)
	m.paceViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.paceViewport.SetContent(m.renderPaceContent(m.paceViewport.Width))
	// Most recent days sit at the bottom.
	m.paceViewport.GotoBottom()
}

// renderPace renders the pace view.
func (m Model) renderPace() string {
	title := fmt.Sprintf("Pace · %s", m.view.Today)
	return m.renderTitledBox(title, m.paceViewport.View(), m.width, m.contentHeight(), true)
}

// renderPaceContent renders the summary lines and one bar per day.
func (m Model) renderPaceContent(width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)
	pace := m.view.Pace

	streakStyle := styles.MutedText
	if pace.StreakDays > 0 {
		streakStyle = styles.SuccessText
	}

	lines := []string{
		bg.Render(pace.StreakLabel(), streakStyle) + bg.Spaces(4) +
			bg.Render(pace.PaceLabel(), styles.AccentText),
		bg.Render(fmt.Sprintf("%d active %s · %d pages total", pace.ActiveDays, plural(pace.ActiveDays, "day"), pace.TotalPages), styles.MutedText),
		"",
	}

	if len(m.view.Daily) == 0 {
		lines = append(lines, bg.Render("No reading sessions yet.", styles.FaintText))
		return strings.Join(lines, "\n")
	}

	maxPages := 0
	for _, d := range m.view.Daily {
		maxPages = max(maxPages, d.Pages)
	}
	countWidth := len(fmt.Sprintf("%d", maxPages))
	barWidth := max(width-len("2006-01-02")-countWidth-4, 1)

	for _, d := range m.view.Daily {
		n := barLength(d.Pages, maxPages, barWidth)
		dayStyle := styles.MutedText
		if d.Day == m.view.Today {
			dayStyle = styles.Text.Bold(true)
		}
		barStyle := styles.AccentText
		if d.Pages == 0 {
			barStyle = styles.FaintText
		}
		lines = append(lines,
			bg.Render(string(d.Day), dayStyle)+bg.Spaces(1)+
				bg.Render(strings.Repeat(barFull, n), barStyle)+
				bg.Render(strings.Repeat(barEmpty, barWidth-n), styles.FaintText)+bg.Spaces(1)+
				bg.Render(fmt.Sprintf("%*d", countWidth, d.Pages), styles.Text))
	}
	return strings.Join(lines, "\n")
}

// barLength scales pages to width against the busiest day. Any day with
// pages gets at least one cell.
func barLength(pages, maxPages, width int) int {
	if pages <= 0 || maxPages <= 0 || width <= 0 {
		return 0
	}
	n := pages * width / maxPages
	return max(min(n, width), 1)
}

// handlePaceKey scrolls the chart.
func (m Model) handlePaceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.paceViewport.LineDown(1)
	case key.Matches(msg, m.keys.Up):
		m.paceViewport.LineUp(1)
	case key.Matches(msg, m.keys.Top):
		m.paceViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.paceViewport.GotoBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.paceViewport.HalfViewDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.paceViewport.HalfViewUp()
	}
	return m, nil
}

// todayLabel is shown in the command bar of the pace view.
func todayLabel(day shelf.Day) string {
	if !day.Valid() {
		return ""
	}
	return "Today " + string(day)
}
