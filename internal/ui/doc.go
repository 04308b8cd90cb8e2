// Package ui provides the Bubble Tea terminal interface for shelf.
//
// # Views
//
// Three views are available and cycled with Tab:
//
//   - Books: filtered and sorted book list with a detail pane for the
//     selected book (author, pages, progress, rating, tags, goal, notes and
//     reading session state)
//   - Pace: bar chart of pages read per day with the average and streak
//   - Logs: tail of shelf's own log file
//
// The header carries the collection stats (totals per status, average
// rating, top genre) and the connection state of the last poll.
//
// # Data Flow
//
//  1. app.Run seeds a state.Store and starts the poller
//  2. The model polls the store on every tick and re-derives a shelf.View
//  3. Mutations (status, rating, sessions) run as tea.Cmds against the API,
//     then trigger an immediate refresh of the store
//  4. Theme, filter and sort changes are persisted through prefs.Save
//
// # Key Bindings
//
//   - f / s: cycle filter / sort
//   - /: fuzzy search over title, author, genre and tags
//   - S: cycle the selected book's status
//   - + / -: raise or lower the rating of a completed book
//   - r: start a reading session, or stop it and record pages read
//   - T: cycle theme
//   - j/k, g/G: navigate
//   - h or ?: help
//   - e or Ctrl+C: exit
package ui
