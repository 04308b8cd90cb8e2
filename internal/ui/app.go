package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/booktracker"
	"github.com/five82/shelf/internal/cache"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/shelf"
	"github.com/five82/shelf/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewBooks View = iota
	ViewPace
	ViewLogs
)

var viewOrder = []View{ViewBooks, ViewPace, ViewLogs}

// Title returns the display name of the view.
func (v View) Title() string {
	switch v {
	case ViewPace:
		return "Pace"
	case ViewLogs:
		return "Logs"
	default:
		return "Books"
	}
}

// SessionController starts and stops reading sessions.
type SessionController interface {
	Start(ctx context.Context, book booktracker.Book) (cache.ActiveSession, error)
	Stop(ctx context.Context, book booktracker.Book, endPagesRead int) (cache.ActiveSession, error)
	All() map[int64]cache.ActiveSession
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	API       booktracker.API
	Store     *state.Store
	Refresh   func(context.Context) error
	Sessions  SessionController
	Logger    *zap.Logger
	PollTick  time.Duration
	Location  *time.Location
	LogPath   string
	APIURL    string
	ThemeName string
	Filter    shelf.Filter
	Sort      shelf.SortKey
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	api       booktracker.API
	store     *state.Store
	refresh   func(context.Context) error
	sessions  SessionController
	logger    *zap.Logger
	prefsPath string
	pollTick  time.Duration
	location  *time.Location
	logPath   string
	apiURL    string
	keys      keyMap
	now       func() time.Time

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Data state
	snapshot state.Snapshot
	active   map[int64]cache.ActiveSession
	view     shelf.View
	visible  []booktracker.Book

	// Books state
	selectedRow int
	filter      shelf.Filter
	sort        shelf.SortKey
	search      searchState
	busy        bool

	// Pace state
	paceViewport viewport.Model

	// Log state
	logViewport viewport.Model
	logState    logState

	// Status line
	flash      string
	flashErr   bool
	flashUntil time.Time

	// Overlays
	showHelp bool
	modal    Modal
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultPollTick
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Default().Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	location := opts.Location
	if location == nil {
		location = time.UTC
	}

	filter := opts.Filter
	if filter == "" {
		filter = shelf.FilterAll
	}
	sortKey := opts.Sort
	if sortKey == "" {
		sortKey = shelf.SortTitleAsc
	}

	m := Model{
		ctx:         ctx,
		api:         opts.API,
		store:       opts.Store,
		refresh:     opts.Refresh,
		sessions:    opts.Sessions,
		logger:      logger,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		location:    location,
		logPath:     opts.LogPath,
		apiURL:      opts.APIURL,
		keys:        DefaultKeyMap(),
		now:         time.Now,
		theme:       GetTheme(themeName),
		currentView: ViewBooks,
		active:      map[int64]cache.ActiveSession{},
		filter:      filter,
		sort:        sortKey,
		search:      newSearchState(),
		logState:    logState{follow: true},
	}
	m.recompute()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store, m.sessions))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initPaceViewport()
			m.initLogViewport()
		}
		m.ready = true
		m.updatePaceViewport()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = msg.snapshot
		if msg.active != nil {
			m.active = msg.active
		}
		m.recompute()
		return m, nil

	case logsMsg:
		m.handleLogs(msg)
		return m, nil

	case pagesConfirmedMsg:
		cmd := m.stopSessionCmd(msg.book, msg.pages)
		return m, cmd

	case mutationMsg:
		m.busy = false
		if msg.err != nil {
			m.logger.Warn("mutation failed", zap.String("action", msg.action), zap.Error(msg.err))
			m.setFlash(msg.action+": "+msg.err.Error(), true)
		} else {
			m.setFlash(msg.action, false)
		}
		if m.store != nil {
			return m, fetchSnapshotCmd(m.store, m.sessions)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.search.editing {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.updatePaceViewport()
		m.logState.dirty = true
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.cycleView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.cycleView(-1))

	case key.Matches(msg, m.keys.ViewBooks):
		return m.switchView(ViewBooks)

	case key.Matches(msg, m.keys.ViewPace):
		return m.switchView(ViewPace)

	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)

	case key.Matches(msg, m.keys.Refresh):
		cmd := m.refreshCmd()
		return m, cmd

	case key.Matches(msg, m.keys.Escape):
		if m.search.query != "" {
			m.search.clear()
			m.recompute()
			return m, nil
		}
		m.currentView = ViewBooks
		return m, nil
	}

	switch m.currentView {
	case ViewBooks:
		return m.handleBooksKey(msg)
	case ViewPace:
		return m.handlePaceKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

func (m Model) cycleView(step int) View {
	for i, v := range viewOrder {
		if v == m.currentView {
			return viewOrder[(i+step+len(viewOrder))%len(viewOrder)]
		}
	}
	return ViewBooks
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	if v == ViewLogs {
		// Fetch immediately when entering logs
		return m, m.loadLogsCmd()
	}
	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store, m.sessions))
	}
	if m.currentView == ViewLogs && m.logState.follow {
		cmds = append(cmds, m.loadLogsCmd())
	}
	if m.flash != "" && !m.flashUntil.IsZero() && m.now().After(m.flashUntil) {
		m.flash = ""
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// recompute re-derives the view from the current snapshot, filter, sort
// and search query, keeping the selection on the same book when possible.
func (m *Model) recompute() {
	var selectedID int64
	if book, ok := m.selectedBook(); ok {
		selectedID = book.ID
	}

	m.view = shelf.Derive(m.snapshot.Books, m.snapshot.Sessions, shelf.Options{
		Filter: m.filter,
		Sort:   m.sort,
		Today:  m.today(),
	})
	m.visible = searchBooks(m.view.Books, m.search.query)

	m.selectedRow = 0
	for i, b := range m.visible {
		if selectedID != 0 && b.ID == selectedID {
			m.selectedRow = i
			break
		}
	}
	m.updatePaceViewport()
}

func (m Model) today() shelf.Day {
	return shelf.Today(m.now(), m.location)
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
	m.flashUntil = m.now().Add(FlashDuration)
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, Filter: string(m.filter), Sort: string(m.sort)}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", zap.String("path", m.prefsPath), zap.Error(err))
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderStatsBar())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())

	return b.String()
}

// contentHeight is the space left below the three header lines.
func (m Model) contentHeight() int {
	return max(m.height-3, 3)
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewBooks:
		return m.renderBooks()
	case ViewPace:
		return m.renderPace()
	case ViewLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	snapshot state.Snapshot
	active   map[int64]cache.ActiveSession
}

type mutationMsg struct {
	action string
	err    error
}

type pagesConfirmedMsg struct {
	book  booktracker.Book
	pages int
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store, sessions SessionController) tea.Cmd {
	return func() tea.Msg {
		msg := snapshotMsg{snapshot: store.Snapshot()}
		if sessions != nil {
			msg.active = sessions.All()
		}
		return msg
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && m.ctx.Err() != nil {
		// Cancelled from outside, e.g. SIGTERM.
		return nil
	}
	return err
}
