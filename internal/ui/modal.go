package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/booktracker"
)

// Modal is the interface for modal dialogs.
// Update returns the updated modal, a command, and whether the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// pagesPrompt asks for the page count reached when a session stops. It
// starts at the book's current pages read.
type pagesPrompt struct {
	book  booktracker.Book
	input textinput.Model
	err   string
}

func newPagesPrompt(book booktracker.Book) *pagesPrompt {
	ti := textinput.New()
	ti.Prompt = "Pages read: "
	ti.CharLimit = 7
	ti.SetValue(strconv.Itoa(max(book.PagesRead, 0)))
	ti.CursorEnd()
	return &pagesPrompt{book: book, input: ti}
}

// parsePages validates the entered page count against the book.
func (p *pagesPrompt) parsePages() (int, error) {
	value := strings.TrimSpace(p.input.Value())
	pages, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", value)
	}
	if pages < 0 {
		return 0, fmt.Errorf("pages cannot be negative")
	}
	if p.book.TotalPages > 0 && pages > p.book.TotalPages {
		return 0, fmt.Errorf("book has %d pages", p.book.TotalPages)
	}
	return pages, nil
}

// Update implements Modal.
func (p *pagesPrompt) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Confirm):
		pages, err := p.parsePages()
		if err != nil {
			p.err = err.Error()
			return p, nil, false
		}
		book := p.book
		return p, func() tea.Msg { return pagesConfirmedMsg{book: book, pages: pages} }, true
	case keyMsg.Type == tea.KeyEsc:
		return p, nil, true
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(keyMsg)
	p.err = ""
	return p, cmd, false
}

// View implements Modal.
func (p *pagesPrompt) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Stop reading"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(truncate(p.book.Title, 36)))
	b.WriteString("\n\n")
	b.WriteString(p.input.View())
	if p.book.TotalPages > 0 {
		b.WriteString(styles.FaintText.Render(fmt.Sprintf(" / %d", p.book.TotalPages)))
	}
	b.WriteString("\n")
	if p.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(p.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter save · esc cancel"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(44)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)))
}
