package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/booktracker"
	"github.com/five82/shelf/internal/shelf"
)

// selectedBook returns the highlighted book in the visible list.
func (m Model) selectedBook() (booktracker.Book, bool) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.visible) {
		return booktracker.Book{}, false
	}
	return m.visible[m.selectedRow], true
}

// handleBooksKey processes keyboard input for the books view.
func (m Model) handleBooksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CycleFilter):
		m.filter = m.filter.Next()
		m.recompute()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		m.sort = m.sort.Next()
		m.recompute()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		cmd := m.startSearch()
		return m, cmd

	case key.Matches(msg, m.keys.CycleStatus):
		cmd := m.cycleStatusCmd()
		return m, cmd

	case key.Matches(msg, m.keys.RateUp):
		cmd := m.rateCmd(1)
		return m, cmd

	case key.Matches(msg, m.keys.RateDown):
		cmd := m.rateCmd(-1)
		return m, cmd

	case key.Matches(msg, m.keys.Session):
		cmd := m.toggleSessionCmd()
		return m, cmd
	}

	count := len(m.visible)
	if count == 0 {
		return m, nil
	}
	half := max((m.contentHeight()-2)/2, 1)

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
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectedRow = min(m.selectedRow+half, count-1)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectedRow = max(m.selectedRow-half, 0)
	}
	return m, nil
}

// renderBooks renders the list pane and detail pane side by side.
func (m Model) renderBooks() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	if !m.snapshot.HasData {
		msg := "Waiting for " + m.apiURL
		if m.snapshot.LastError != nil {
			msg = "No data yet: " + m.snapshot.LastError.Error()
		}
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render(truncate(msg, m.width-4)))
	}

	listWidth := m.width * 45 / 100
	if m.width >= LayoutWideWidth {
		listWidth = m.width * 35 / 100
	}
	detailWidth := m.width - listWidth

	listPane := m.renderTitledBox(m.listTitle(), m.renderBookList(listWidth-2, height-2), listWidth, height, true)

	var detail string
	if book, ok := m.selectedBook(); ok {
		detail = m.renderDetail(book, detailWidth-4)
	} else {
		detail = lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Muted)).
			Background(lipgloss.Color(m.theme.SurfaceAlt)).
			Render(" No books match.")
	}
	detailPane := m.renderTitledBox("Details", detail, detailWidth, height, false)

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// listTitle describes the active filter, sort and search.
func (m Model) listTitle() string {
	title := fmt.Sprintf("%s · %s · %d/%d", m.filter.Label(), m.sort.Label(), len(m.visible), len(m.snapshot.Books))
	if m.search.query != "" {
		title += " · /" + truncate(m.search.query, 16)
	}
	return title
}

// renderBookList renders the visible rows, scrolled so the selection
// stays on screen.
func (m Model) renderBookList(width, height int) string {
	if len(m.visible) == 0 {
		return NewBgStyle(m.theme.FocusBg).Render(" No books match.", m.theme.Styles().MutedText)
	}

	offset := 0
	if height > 0 && m.selectedRow >= height {
		offset = m.selectedRow - height + 1
	}
	end := min(offset+height, len(m.visible))

	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		selected := i == m.selectedRow
		bgColor := m.theme.FocusBg
		if selected {
			bgColor = m.theme.SelectionBg
		}
		content := m.formatBookRow(m.visible[i], width, bgColor, selected)
		lines = append(lines, NewBgStyle(bgColor).FillLine(content, width))
	}
	return strings.Join(lines, "\n")
}

// formatBookRow formats one list row: "● Title  42%".
func (m Model) formatBookRow(book booktracker.Book, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)

	marker := "●"
	if _, ok := m.active[book.ID]; ok {
		marker = "▶"
	}
	pct := fmt.Sprintf("%3d%%", shelf.BookProgress(book))
	titleWidth := max(width-len(pct)-4, 8)

	var markerStyle, titleStyle, pctStyle lipgloss.Style
	if selected {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		markerStyle, titleStyle, pctStyle = sel, sel.Bold(true), sel
	} else {
		styles := m.theme.Styles()
		markerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.colorForBook(book)))
		titleStyle = styles.Text
		pctStyle = styles.MutedText
	}

	title := padRight(truncate(book.Title, titleWidth), titleWidth)
	return bg.Space() + bg.Render(marker, markerStyle) + bg.Space() +
		bg.Render(title, titleStyle) + bg.Space() + bg.Render(pct, pctStyle)
}

// colorForBook returns the theme color for the book's status, or the
// session color while a session is running.
func (m Model) colorForBook(book booktracker.Book) string {
	if _, ok := m.active[book.ID]; ok {
		if color, ok := m.theme.StatusColors["active"]; ok {
			return color
		}
	}
	if color, ok := m.theme.StatusColors[book.Status.Slug()]; ok {
		return color
	}
	return m.theme.Text
}

// renderDetail renders the detail pane for one book.
func (m Model) renderDetail(book booktracker.Book, width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)
	labelWidth := 10

	var lines []string
	row := func(label, value string, style lipgloss.Style) {
		if strings.TrimSpace(value) == "" {
			return
		}
		lines = append(lines, bg.Render(padRight(label, labelWidth), styles.MutedText)+
			bg.Render(truncate(value, width-labelWidth), style))
	}

	lines = append(lines, bg.Render(truncate(book.Title, width), styles.Text.Bold(true)))
	if book.Author != "" {
		lines = append(lines, bg.Render("by "+truncate(book.Author, width-3), styles.MutedText))
	}
	lines = append(lines, "")

	statusBadge := styles.StatusStyle(book.Status.Slug()).Render(string(book.Status))
	lines = append(lines, bg.Render(padRight("Status", labelWidth), styles.MutedText)+statusBadge)
	row("Genre", book.Genre, styles.Text)
	row("Pages", fmt.Sprintf("%d / %d", book.PagesRead, book.TotalPages), styles.Text)

	barWidth := max(min(width-labelWidth-6, 30), 5)
	progress := shelf.BookProgress(book)
	lines = append(lines, bg.Render(padRight("Progress", labelWidth), styles.MutedText)+
		m.renderProgressBar(progress, barWidth, styles, bg)+bg.Space()+
		bg.Render(fmt.Sprintf("%d%%", progress), styles.Text))

	rating := shelf.NoData
	if book.Rating > 0 {
		rating = ratingDots(book.Rating)
	}
	ratingStyle := styles.WarningText
	if !book.CanRate() {
		ratingStyle = styles.FaintText
	}
	row("Rating", rating, ratingStyle)
	row("Tags", strings.Join(book.TagList(), ", "), styles.AccentText)
	row("Goal", m.goalText(book), styles.Text)

	lines = append(lines, "")
	lines = append(lines, m.sessionLines(book, width, styles, bg)...)

	if notes := strings.TrimSpace(book.Notes); notes != "" {
		lines = append(lines, "", bg.Render("Notes", styles.MutedText))
		wrapped := lipgloss.NewStyle().Width(max(width, 10)).Render(notes)
		for _, line := range strings.Split(wrapped, "\n") {
			lines = append(lines, bg.Render(line, styles.Text))
		}
	}

	return strings.Join(lines, "\n")
}

// sessionLines describes the running session and the book's history.
func (m Model) sessionLines(book booktracker.Book, width int, styles Styles, bg BgStyle) []string {
	var lines []string
	if s, ok := m.active[book.ID]; ok {
		started := s.StartedAt.In(m.location).Format("15:04")
		lines = append(lines,
			bg.Render("▶ Reading since "+started, styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(fmt.Sprintf("from page %d", s.StartPagesRead), styles.MutedText))
		lines = append(lines, bg.Render("r to stop and record pages", styles.FaintText))
	} else if book.CanStartSession() {
		lines = append(lines, bg.Render("r to start a reading session", styles.FaintText))
	}

	history := shelf.SessionsForBook(m.snapshot.Sessions, book.ID)
	if len(history) > 0 {
		pages := 0
		for _, n := range shelf.DailyTotals(history) {
			pages += n
		}
		summary := fmt.Sprintf("%d %s · %d pages logged", len(history), plural(len(history), "session"), pages)
		lines = append(lines, bg.Render(truncate(summary, width), styles.MutedText))
	}
	return lines
}

const dayLayout = "2006-01-02"

// goalText renders the goal date with the days left relative to today.
func (m Model) goalText(book booktracker.Book) string {
	goal := book.ParsedGoalEndDate()
	if goal.IsZero() {
		return ""
	}
	day := shelf.DayOf(goal)
	today, err := time.Parse(dayLayout, string(m.today()))
	if err != nil {
		return string(day)
	}
	days := int(goal.Sub(today).Hours() / 24)
	switch {
	case days > 0:
		return fmt.Sprintf("%s (%d %s left)", day, days, plural(days, "day"))
	case days == 0:
		return fmt.Sprintf("%s (today)", day)
	default:
		return fmt.Sprintf("%s (%d %s overdue)", day, -days, plural(-days, "day"))
	}
}

// ratingDots renders a 1-5 rating as filled and empty dots.
func ratingDots(rating int) string {
	rating = max(min(rating, 5), 0)
	return strings.Repeat("●", rating) + strings.Repeat("○", 5-rating) + fmt.Sprintf(" %d/5", rating)
}

// renderProgressBar renders a text progress bar without percentage text.
func (m Model) renderProgressBar(percent, width int, styles Styles, bg BgStyle) string {
	percent = max(min(percent, 100), 0)
	filled := min(width*percent/100, width)
	return bg.Render(strings.Repeat(barFull, filled), styles.AccentText) +
		bg.Render(strings.Repeat(barEmpty, width-filled), styles.FaintText)
}

// renderTitledBox renders content in a box with the title embedded in the
// top border: ┌─── Title ───┐. Focused boxes use the focus colors.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColor, bgColor := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColor, bgColor = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColor)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	top := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottom := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	lineStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColor))
	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	rows := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		rows = append(rows, bg.Render("│", borderStyle)+lineStyle.Render(line)+bg.Render("│", borderStyle))
	}

	return top + "\n" + strings.Join(rows, "\n") + "\n" + bottom
}
