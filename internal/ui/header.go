package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/booktracker"
)

// connState summarizes where the shown data came from.
type connState int

const (
	connConnecting connState = iota
	connLive
	connCached
	connError
	connOffline
	connLoggedOut
)

func (m Model) connState() connState {
	s := m.snapshot
	switch {
	case s.LastError != nil && errors.Is(s.LastError, booktracker.ErrUnauthorized):
		return connLoggedOut
	case s.LastError != nil && s.IsOffline():
		return connOffline
	case s.LastError != nil:
		return connError
	case !s.HasData:
		return connConnecting
	case s.FromCache:
		return connCached
	default:
		return connLive
	}
}

// renderHeader renders the status bar: logo, connection, last refresh.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("shelf", styles.Logo)}

	switch m.connState() {
	case connLive:
		parts = append(parts, bg.Render("● LIVE", styles.SuccessText))
	case connCached:
		parts = append(parts, bg.Render("● CACHED", styles.WarningText.Bold(true)))
	case connError:
		parts = append(parts, bg.Render("● ERROR", styles.WarningText.Bold(true)))
	case connOffline:
		parts = append(parts, bg.Render("● OFFLINE", styles.DangerText))
	case connLoggedOut:
		parts = append(parts, bg.Render("● LOGGED OUT", styles.DangerText))
	default:
		parts = append(parts, bg.Render("Connecting to "+m.apiURL+"...", styles.WarningText.Bold(true)))
	}

	if ts := m.formatTimestamp(); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if err := m.snapshot.LastError; err != nil {
		maxErr := 80
		if compact {
			maxErr = 40
		}
		text := err.Error()
		if m.connState() == connLoggedOut {
			text = "run `shelf login`"
		}
		parts = append(parts, bg.Render(truncate(text, maxErr), styles.DangerText))
		if m.snapshot.ConsecutiveFailures > 1 && !compact {
			parts = append(parts, bg.Render(fmt.Sprintf("%d failed polls", m.snapshot.ConsecutiveFailures), styles.FaintText))
		}
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// formatTimestamp formats when the shown data was fetched, with a relative
// age once it is more than a minute old.
func (m Model) formatTimestamp() string {
	fetched := m.snapshot.FetchedAt
	if fetched.IsZero() {
		return ""
	}
	local := fetched.In(m.location)
	age := m.now().Sub(fetched)

	layout := "15:04:05"
	if age >= 24*time.Hour {
		layout = "Jan 2 15:04"
	}
	text := "Updated " + local.Format(layout)
	if age >= time.Minute {
		text += " (" + formatAge(age) + " ago)"
	}
	return text
}

// formatAge renders a duration with its largest unit.
func formatAge(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case d >= time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d >= time.Minute:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

// renderStatsBar renders the collection stats across the full width.
func (m Model) renderStatsBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	stats := m.view.Stats

	stat := func(label string, value string) string {
		return bg.Render(label+":", styles.MutedText) + bg.Space() + bg.Render(value, styles.Text)
	}
	badge := func(slug, label string, n int) string {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColors[slug]))
		return bg.Render("●", dot) + bg.Space() + stat(label, fmt.Sprintf("%d", n))
	}

	parts := []string{
		stat("Total", fmt.Sprintf("%d", stats.Total)),
		badge(booktracker.StatusCompleted.Slug(), "Completed", stats.Completed),
		badge(booktracker.StatusReading.Slug(), "Reading", stats.Reading),
		badge(booktracker.StatusNotStarted.Slug(), "Not Started", stats.NotStarted),
		stat("Avg. Rating", stats.AvgRating),
	}
	if m.width >= LayoutCompactWidth {
		parts = append(parts, stat("Top Genre", truncate(stats.TopGenre, 24)))
	}
	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderCommandBar renders the key hints for the current view, or the
// flash message after an action.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.search.editing {
		return styles.Header.Width(m.width).Render(m.search.input.View())
	}

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewPace:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"b", "Books"},
			{"l", "Logs"},
			{"?", "More"},
		}
	case ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"j/k", "Scroll"},
			{"b", "Books"},
			{"p", "Pace"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"f", m.filter.Label()},
			{"s", m.sort.Label()},
			{"/", "Search"},
			{"S", "Status"},
			{"+/-", "Rate"},
			{"r", "Session"},
			{"Tab", "Views"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.currentView == ViewBooks && m.search.query != "" {
		segments = append(segments, bg.Render("/"+truncate(m.search.query, 18), styles.AccentText))
	}
	if m.currentView == ViewPace {
		if label := todayLabel(m.view.Today); label != "" {
			segments = append(segments, bg.Render(label, styles.FaintText))
		}
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	line := strings.Join(segments, bg.Spaces(2))
	if m.flash != "" {
		flashStyle := styles.SuccessText
		if m.flashErr {
			flashStyle = styles.DangerText
		}
		line = bg.Render(truncate(m.flash, max(m.width/2, 20)), flashStyle) + bg.Spaces(3) + line
	}
	return styles.Header.Width(m.width).Render(line)
}
