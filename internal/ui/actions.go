package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/booktracker"
)

// errNoSelection is reported when an action needs a highlighted book.
var errNoSelection = errors.New("no book selected")

// mutate runs fn against the API off the UI goroutine, then refreshes the
// store so the next snapshot reflects the change.
func (m *Model) mutate(action string, fn func(ctx context.Context) error) tea.Cmd {
	if m.busy {
		m.setFlash("Busy, try again in a moment", true)
		return nil
	}
	m.busy = true
	parent := m.ctx
	refresh := m.refresh
	logger := m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, MutationTimeout)
		defer cancel()
		err := fn(ctx)
		if refresh != nil {
			if rerr := refresh(ctx); rerr != nil {
				logger.Warn("refresh after mutation failed", zap.String("action", action), zap.Error(rerr))
			}
		}
		return mutationMsg{action: action, err: err}
	}
}

// refreshCmd polls the API immediately.
func (m *Model) refreshCmd() tea.Cmd {
	if m.refresh == nil {
		return nil
	}
	return m.mutate("Refreshed", func(context.Context) error { return nil })
}

// cycleStatusCmd moves the selected book to its next status.
func (m *Model) cycleStatusCmd() tea.Cmd {
	book, ok := m.selectedBook()
	if !ok {
		m.setFlash(errNoSelection.Error(), true)
		return nil
	}
	if m.api == nil {
		return nil
	}
	book.Status = book.Status.Next()
	update := booktracker.UpdateFromBook(book)
	api := m.api
	return m.mutate(fmt.Sprintf("%s → %s", truncate(book.Title, 30), book.Status), func(ctx context.Context) error {
		return api.UpdateBook(ctx, book.ID, update)
	})
}

// rateCmd nudges the rating of a completed book by delta, within 1-5.
func (m *Model) rateCmd(delta int) tea.Cmd {
	book, ok := m.selectedBook()
	if !ok {
		m.setFlash(errNoSelection.Error(), true)
		return nil
	}
	if !book.CanRate() {
		m.setFlash("Only completed books can be rated", true)
		return nil
	}
	rating := book.Rating
	if rating <= 0 {
		rating = booktracker.DefaultRating
	}
	rating = max(min(rating+delta, 5), 1)
	if rating == book.Rating || m.api == nil {
		return nil
	}
	book.Rating = rating
	update := booktracker.UpdateFromBook(book)
	api := m.api
	return m.mutate(fmt.Sprintf("Rated %s %d/5", truncate(book.Title, 30), rating), func(ctx context.Context) error {
		return api.UpdateBook(ctx, book.ID, update)
	})
}

// toggleSessionCmd starts a session for the selected book, or opens the
// pages prompt when one is already running.
func (m *Model) toggleSessionCmd() tea.Cmd {
	book, ok := m.selectedBook()
	if !ok {
		m.setFlash(errNoSelection.Error(), true)
		return nil
	}
	if m.sessions == nil {
		return nil
	}
	if _, running := m.active[book.ID]; running {
		prompt := newPagesPrompt(book)
		m.modal = prompt
		return prompt.input.Focus()
	}
	if !book.CanStartSession() {
		m.setFlash("Only books being read can start a session", true)
		return nil
	}
	sessions := m.sessions
	return m.mutate("Started reading "+truncate(book.Title, 30), func(ctx context.Context) error {
		_, err := sessions.Start(ctx, book)
		return err
	})
}

// stopSessionCmd closes the running session at pages read.
func (m *Model) stopSessionCmd(book booktracker.Book, pages int) tea.Cmd {
	if m.sessions == nil {
		return nil
	}
	sessions := m.sessions
	read := max(pages-m.active[book.ID].StartPagesRead, 0)
	action := fmt.Sprintf("Stopped reading %s (+%d %s)", truncate(book.Title, 30), read, plural(read, "page"))
	return m.mutate(action, func(ctx context.Context) error {
		_, err := sessions.Stop(ctx, book, pages)
		return err
	})
}
