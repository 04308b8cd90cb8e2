package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const helpKeyWidth = 12

// helpGroupTitles names the FullHelp groups, in order.
var helpGroupTitles = []string{
	"Views",
	"Navigation",
	"Paging",
	"Book list",
	"Book actions",
	"Logs & data",
	"General",
}

// renderHelp renders the key binding overlay from the key map, so the
// overlay always matches what Update actually handles.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning)).Width(helpKeyWidth)

	groups := m.keys.FullHelp()
	// Two columns once the terminal is wide enough.
	columns := 1
	if m.width >= LayoutCompactWidth {
		columns = 2
	}
	perColumn := (len(groups) + columns - 1) / columns

	rendered := make([]string, 0, columns)
	for c := 0; c < columns; c++ {
		var b strings.Builder
		start := c * perColumn
		end := min(start+perColumn, len(groups))
		for i := start; i < end; i++ {
			if i > start {
				b.WriteString("\n")
			}
			title := "More"
			if i < len(helpGroupTitles) {
				title = helpGroupTitles[i]
			}
			b.WriteString(styles.AccentText.Bold(true).Render(title))
			b.WriteString("\n")
			for _, binding := range groups[i] {
				b.WriteString(helpLine(binding, keyStyle, styles.Text))
			}
		}
		rendered = append(rendered, lipgloss.NewStyle().Width(helpKeyWidth+24).Render(b.String()))
	}

	heading := styles.Text.Bold(true).Render("Keyboard Shortcuts") + "\n" +
		styles.FaintText.Render(strings.Repeat("─", 30))
	body := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	content := lipgloss.JoinVertical(lipgloss.Left, heading, "", body, "",
		styles.FaintText.Render("any key closes"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)))
}

func helpLine(b key.Binding, keyStyle, descStyle lipgloss.Style) string {
	h := b.Help()
	if h.Key == "" {
		return ""
	}
	return keyStyle.Render(h.Key) + descStyle.Render(h.Desc) + "\n"
}
