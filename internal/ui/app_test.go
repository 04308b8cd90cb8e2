package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/booktracker"
	"github.com/five82/shelf/internal/cache"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/shelf"
	"github.com/five82/shelf/internal/state"
)

type updateCall struct {
	id     int64
	update booktracker.BookUpdate
}

type fakeAPI struct {
	mu      sync.Mutex
	updates []updateCall
	err     error
}

func (f *fakeAPI) FetchBooks(context.Context) ([]booktracker.Book, error) { return nil, nil }
func (f *fakeAPI) FetchSessions(context.Context) ([]booktracker.ReadingSession, error) {
	return nil, nil
}
func (f *fakeAPI) CreateBook(context.Context, booktracker.NewBook) error { return nil }
func (f *fakeAPI) DeleteBook(context.Context, int64) error               { return nil }
func (f *fakeAPI) StartSession(context.Context, booktracker.Book) (booktracker.SessionID, error) {
	return "1", nil
}
func (f *fakeAPI) StopSession(context.Context, int64, booktracker.SessionID, int) error { return nil }
func (f *fakeAPI) Search(context.Context, string) ([]booktracker.SearchResult, error) {
	return nil, nil
}

func (f *fakeAPI) UpdateBook(_ context.Context, id int64, update booktracker.BookUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{id: id, update: update})
	return f.err
}

type stopCall struct {
	bookID int64
	pages  int
}

type fakeSessions struct {
	active  map[int64]cache.ActiveSession
	started []int64
	stopped []stopCall
}

func (f *fakeSessions) Start(_ context.Context, book booktracker.Book) (cache.ActiveSession, error) {
	f.started = append(f.started, book.ID)
	s := cache.ActiveSession{BookID: book.ID, SessionID: "s1", StartPagesRead: book.PagesRead}
	f.active[book.ID] = s
	return s, nil
}

func (f *fakeSessions) Stop(_ context.Context, book booktracker.Book, pages int) (cache.ActiveSession, error) {
	f.stopped = append(f.stopped, stopCall{bookID: book.ID, pages: pages})
	s := f.active[book.ID]
	delete(f.active, book.ID)
	return s, nil
}

func (f *fakeSessions) All() map[int64]cache.ActiveSession {
	out := make(map[int64]cache.ActiveSession, len(f.active))
	for k, v := range f.active {
		out[k] = v
	}
	return out
}

func testBooks() []booktracker.Book {
	return []booktracker.Book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert", Genre: "SF", Status: booktracker.StatusReading, PagesRead: 100, TotalPages: 400, Rating: 4, Tags: "classic, desert"},
		{ID: 2, Title: "Emma", Author: "Jane Austen", Genre: "Romance", Status: booktracker.StatusCompleted, TotalPages: 300, Rating: 4},
		{ID: 3, Title: "Beloved", Author: "Toni Morrison", Status: booktracker.StatusNotStarted, TotalPages: 320, Rating: 3},
	}
}

type harness struct {
	model    Model
	api      *fakeAPI
	sessions *fakeSessions
	store    *state.Store
	prefs    string
	refresh  *int
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := &state.Store{}
	store.Update(testBooks(), []booktracker.ReadingSession{
		{ID: "a", BookID: 1, StartTime: "2024-03-01T08:00:00Z", PagesRead: 20},
		{ID: "b", BookID: 1, StartTime: "2024-03-02T08:00:00Z", PagesRead: 30},
	}, nil)

	refreshes := 0
	h := &harness{
		api:      &fakeAPI{},
		sessions: &fakeSessions{active: map[int64]cache.ActiveSession{}},
		store:    store,
		prefs:    filepath.Join(t.TempDir(), "prefs.toml"),
		refresh:  &refreshes,
	}
	m := New(Options{
		API:      h.api,
		Store:    store,
		Sessions: h.sessions,
		Refresh: func(context.Context) error {
			refreshes++
			return nil
		},
		APIURL:    "http://books.test",
		PrefsPath: h.prefs,
		Location:  time.UTC,
	})
	m.now = func() time.Time { return time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC) }
	h.model = m
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.sync()
	return h
}

// send feeds one message through Update and returns the resulting command.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

func (h *harness) key(s string) tea.Cmd {
	return h.send(keyMsg(s))
}

// sync delivers a fresh snapshot, as the next tick would.
func (h *harness) sync() {
	h.send(fetchSnapshotCmd(h.store, h.sessions)())
}

// run executes cmd and feeds its message back through Update.
func (h *harness) run(t *testing.T, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	return h.send(cmd())
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func visibleIDs(m Model) []int64 {
	ids := make([]int64, len(m.visible))
	for i, b := range m.visible {
		ids[i] = b.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestModel_DefaultsToTitleSort(t *testing.T) {
	h := newHarness(t)

	if got, want := visibleIDs(h.model), []int64{3, 1, 2}; !equalIDs(got, want) {
		t.Fatalf("visible = %v, want %v", got, want)
	}
	if h.model.view.Stats.Total != 3 {
		t.Fatalf("stats total = %d, want 3", h.model.view.Stats.Total)
	}
	if got := h.model.view.Pace.StreakDays; got != 2 {
		t.Fatalf("streak = %d, want 2", got)
	}
}

func TestModel_FilterAndSortPersistPrefs(t *testing.T) {
	h := newHarness(t)

	h.key("f")
	if h.model.filter != shelf.FilterReading {
		t.Fatalf("filter = %q, want reading", h.model.filter)
	}
	if got, want := visibleIDs(h.model), []int64{1}; !equalIDs(got, want) {
		t.Fatalf("visible = %v, want %v", got, want)
	}
	if h.model.view.Stats.Total != 3 {
		t.Fatalf("stats should cover the unfiltered collection, got total %d", h.model.view.Stats.Total)
	}

	h.key("s")
	if h.model.sort != shelf.SortTitleDesc {
		t.Fatalf("sort = %q, want title-desc", h.model.sort)
	}

	saved := prefs.Load(h.prefs)
	if saved.Filter != "reading" || saved.Sort != "title-desc" {
		t.Fatalf("saved prefs = %+v", saved)
	}
}

func TestModel_Navigation(t *testing.T) {
	h := newHarness(t)

	h.key("j")
	h.key("j")
	h.key("j")
	if h.model.selectedRow != 2 {
		t.Fatalf("selectedRow = %d, want 2 (clamped)", h.model.selectedRow)
	}
	h.key("g")
	if h.model.selectedRow != 0 {
		t.Fatalf("selectedRow after g = %d, want 0", h.model.selectedRow)
	}
	h.key("G")
	if h.model.selectedRow != 2 {
		t.Fatalf("selectedRow after G = %d, want 2", h.model.selectedRow)
	}
	h.key("k")
	if h.model.selectedRow != 1 {
		t.Fatalf("selectedRow after k = %d, want 1", h.model.selectedRow)
	}
}

func TestModel_SelectionFollowsBookAcrossResort(t *testing.T) {
	h := newHarness(t)

	h.key("j") // Dune
	h.key("s") // title-desc: Emma, Dune, Beloved
	book, ok := h.model.selectedBook()
	if !ok || book.ID != 1 {
		t.Fatalf("selected = %+v, want Dune", book)
	}
}

func TestModel_CycleStatusUpdatesBookAndRefreshes(t *testing.T) {
	h := newHarness(t)

	// Beloved is first and not started.
	cmd := h.key("S")
	if !h.model.busy {
		t.Fatalf("expected model to be busy while the mutation runs")
	}
	h.run(t, cmd)

	if len(h.api.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(h.api.updates))
	}
	got := h.api.updates[0]
	if got.id != 3 || got.update.Status != booktracker.StatusReading {
		t.Fatalf("update = %+v, want book 3 to Reading", got)
	}
	if *h.refresh != 1 {
		t.Fatalf("refresh calls = %d, want 1", *h.refresh)
	}
	if h.model.busy {
		t.Fatalf("busy should clear after the mutation")
	}
	if h.model.flashErr || !strings.Contains(h.model.flash, "Reading") {
		t.Fatalf("flash = %q (err=%v)", h.model.flash, h.model.flashErr)
	}
}

func TestModel_MutationErrorIsFlashed(t *testing.T) {
	h := newHarness(t)
	h.api.err = errors.New("api /api/books/3 returned status 500")

	h.run(t, h.key("S"))
	if !h.model.flashErr || !strings.Contains(h.model.flash, "status 500") {
		t.Fatalf("flash = %q (err=%v)", h.model.flash, h.model.flashErr)
	}
}

func TestModel_RatingOnlyForCompletedBooks(t *testing.T) {
	h := newHarness(t)

	// Beloved is not started.
	if cmd := h.key("+"); cmd != nil {
		t.Fatalf("rating a not started book should not issue a command")
	}
	if !h.model.flashErr {
		t.Fatalf("expected an error flash")
	}

	h.key("G") // Emma, completed, rating 4
	h.run(t, h.key("-"))
	if len(h.api.updates) != 1 || h.api.updates[0].update.Rating != 3 {
		t.Fatalf("updates = %+v, want rating 3", h.api.updates)
	}
	if h.api.updates[0].update.PagesRead != 0 {
		t.Fatalf("completed books send zero pages read, got %d", h.api.updates[0].update.PagesRead)
	}
}

func TestModel_RatingClampsAtFive(t *testing.T) {
	h := newHarness(t)
	books := testBooks()
	books[1].Rating = 5
	h.store.Update(books, nil, nil)
	h.sync()

	h.key("G")
	if cmd := h.key("+"); cmd != nil {
		t.Fatalf("rating above 5 should be a no-op")
	}
}

func TestModel_SessionStartAndStop(t *testing.T) {
	h := newHarness(t)
	h.key("j") // Dune, reading

	h.run(t, h.key("r"))
	if len(h.sessions.started) != 1 || h.sessions.started[0] != 1 {
		t.Fatalf("started = %v, want [1]", h.sessions.started)
	}
	h.sync()
	if _, ok := h.model.active[1]; !ok {
		t.Fatalf("expected an active session for book 1")
	}

	h.key("r")
	if h.model.modal == nil {
		t.Fatalf("stopping a session should prompt for pages")
	}
	h.key("backspace")
	h.key("backspace")
	h.key("backspace")
	h.key("150")
	cmd := h.key("enter")
	if h.model.modal != nil {
		t.Fatalf("modal should close on a valid page count")
	}
	stopCmd := h.run(t, cmd)
	h.run(t, stopCmd)

	if len(h.sessions.stopped) != 1 {
		t.Fatalf("stopped = %v, want one call", h.sessions.stopped)
	}
	if got := h.sessions.stopped[0]; got.bookID != 1 || got.pages != 150 {
		t.Fatalf("stop = %+v, want book 1 at 150", got)
	}
	if !strings.Contains(h.model.flash, "+50 pages") {
		t.Fatalf("flash = %q, want pages delta", h.model.flash)
	}
}

func TestModel_SessionRequiresReading(t *testing.T) {
	h := newHarness(t)

	// Beloved is not started.
	if cmd := h.key("r"); cmd != nil {
		t.Fatalf("expected no command for a book that is not being read")
	}
	if len(h.sessions.started) != 0 {
		t.Fatalf("no session should start")
	}
}

func TestModel_SearchFiltersLive(t *testing.T) {
	h := newHarness(t)

	h.key("/")
	if !h.model.search.editing {
		t.Fatalf("expected search prompt to be focused")
	}
	h.key("austen")
	if got, want := visibleIDs(h.model), []int64{2}; !equalIDs(got, want) {
		t.Fatalf("visible while typing = %v, want %v", got, want)
	}
	h.key("enter")
	if h.model.search.editing || h.model.search.query != "austen" {
		t.Fatalf("search state = %+v", h.model.search)
	}

	h.key("esc")
	if h.model.search.query != "" || len(h.model.visible) != 3 {
		t.Fatalf("esc should clear the search, visible = %v", visibleIDs(h.model))
	}
}

func TestModel_ThemeCyclePersists(t *testing.T) {
	h := newHarness(t)
	start := h.model.theme.Name

	h.key("T")
	if h.model.theme.Name == start {
		t.Fatalf("theme did not change from %q", start)
	}
	if got := prefs.Load(h.prefs).Theme; got != h.model.theme.Name {
		t.Fatalf("saved theme = %q, want %q", got, h.model.theme.Name)
	}
}

func TestModel_TabCyclesViews(t *testing.T) {
	h := newHarness(t)

	want := []View{ViewPace, ViewLogs, ViewBooks}
	for _, v := range want {
		h.key("tab")
		if h.model.currentView != v {
			t.Fatalf("currentView = %v, want %v", h.model.currentView, v)
		}
	}
}

func TestModel_RendersEveryView(t *testing.T) {
	h := newHarness(t)

	for _, v := range viewOrder {
		h.model.currentView = v
		out := h.model.View()
		if !strings.Contains(out, "shelf") {
			t.Fatalf("%s view is missing the header", v.Title())
		}
	}

	h.model.currentView = ViewPace
	if out := h.model.View(); !strings.Contains(out, "Reading streak: 2 days") {
		t.Fatalf("pace view missing streak label")
	}

	h.model.showHelp = true
	if out := h.model.View(); !strings.Contains(out, "Keyboard Shortcuts") {
		t.Fatalf("help overlay not rendered")
	}
	h.key("x")
	if h.model.showHelp {
		t.Fatalf("any key should close help")
	}
}

func TestModel_HeaderShowsConnectionState(t *testing.T) {
	h := newHarness(t)
	if h.model.connState() != connLive {
		t.Fatalf("connState = %v, want live", h.model.connState())
	}

	h.store.Update(nil, nil, errors.New("dial tcp: connection refused"))
	h.store.Update(nil, nil, errors.New("dial tcp: connection refused"))
	h.sync()
	if h.model.connState() != connOffline {
		t.Fatalf("connState = %v, want offline", h.model.connState())
	}
	if len(h.model.visible) != 3 {
		t.Fatalf("failed polls should keep the last books, got %d", len(h.model.visible))
	}

	h.store.Update(nil, nil, booktracker.ErrUnauthorized)
	h.sync()
	if h.model.connState() != connLoggedOut {
		t.Fatalf("connState = %v, want logged out", h.model.connState())
	}
}

func TestModel_QuitKeys(t *testing.T) {
	h := newHarness(t)
	cmd := h.key("e")
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("e should quit")
	}
}
