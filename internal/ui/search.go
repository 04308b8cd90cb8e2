package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/five82/shelf/internal/booktracker"
)

// searchState holds the book search prompt.
type searchState struct {
	input   textinput.Model
	editing bool
	query   string
}

func newSearchState() searchState {
	ti := textinput.New()
	ti.Placeholder = "title, author, genre, tag"
	ti.Prompt = "/"
	ti.CharLimit = 100
	return searchState{input: ti}
}

func (s *searchState) clear() {
	s.editing = false
	s.query = ""
	s.input.SetValue("")
	s.input.Blur()
}

// bookSource adapts a book list to fuzzy.Source.
type bookSource []booktracker.Book

func (s bookSource) String(i int) string {
	b := s[i]
	return strings.Join([]string{b.Title, b.Author, b.Genre, b.Tags}, " ")
}

func (s bookSource) Len() int {
	return len(s)
}

// searchBooks keeps the books that fuzzily match query, in their original
// order. An empty query matches everything.
func searchBooks(books []booktracker.Book, query string) []booktracker.Book {
	query = strings.TrimSpace(query)
	if query == "" {
		return books
	}
	matches := fuzzy.FindFrom(query, bookSource(books))
	hit := make([]bool, len(books))
	for _, match := range matches {
		hit[match.Index] = true
	}
	out := make([]booktracker.Book, 0, len(matches))
	for i, b := range books {
		if hit[i] {
			out = append(out, b)
		}
	}
	return out
}

// startSearch focuses the prompt, keeping any committed query for editing.
func (m *Model) startSearch() tea.Cmd {
	m.search.editing = true
	m.search.input.SetValue(m.search.query)
	m.search.input.CursorEnd()
	return m.search.input.Focus()
}

// handleSearchKey routes keys to the prompt while it has focus. The list
// filters live as the query changes.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.search.editing = false
		m.search.query = strings.TrimSpace(m.search.input.Value())
		m.search.input.Blur()
		m.recompute()
		return m, nil

	case msg.Type == tea.KeyEsc || msg.Type == tea.KeyCtrlC:
		m.search.clear()
		m.recompute()
		return m, nil
	}

	var cmd tea.Cmd
	m.search.input, cmd = m.search.input.Update(msg)
	m.search.query = m.search.input.Value()
	m.recompute()
	return m, cmd
}
