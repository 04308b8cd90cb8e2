package booktracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrUnauthorized is returned when the backend rejects the session cookie.
	ErrUnauthorized = errors.New("not logged in")
	// ErrNotFound is returned for unknown books or sessions.
	ErrNotFound = errors.New("not found")
	// ErrNotReading is returned when a session is started for a book that is
	// not in the Reading state.
	ErrNotReading = errors.New("book is not being read")
)

// Fetcher reads the collections the view pipeline consumes.
type Fetcher interface {
	FetchBooks(ctx context.Context) ([]Book, error)
	FetchSessions(ctx context.Context) ([]ReadingSession, error)
}

// API is the full BookTracker surface used by the TUI and CLI.
type API interface {
	Fetcher
	CreateBook(ctx context.Context, book NewBook) error
	UpdateBook(ctx context.Context, id int64, update BookUpdate) error
	DeleteBook(ctx context.Context, id int64) error
	StartSession(ctx context.Context, book Book) (SessionID, error)
	StopSession(ctx context.Context, bookID int64, id SessionID, endPagesRead int) error
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the BookTracker HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

const (
	defaultBaseURL   = "127.0.0.1:8080"
	defaultUserAgent = "shelf/0.1"
	requestTimeout   = 10 * time.Second
	searchLimit      = 5
)

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is added
// when the supplied client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		if hc.Jar == nil {
			hc.Jar = c.http.Jar
		}
		c.http = hc
	}
}

// NewClient builds a Client for the given base URL or host:port.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
			Jar:     jar,
		},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Cookies returns the session cookies held for the API origin.
func (c *Client) Cookies() []*http.Cookie {
	if c.http.Jar == nil {
		return nil
	}
	return c.http.Jar.Cookies(c.baseURL)
}

// SetCookies seeds the jar, typically from a persisted login.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	if c.http.Jar == nil || len(cookies) == 0 {
		return
	}
	c.http.Jar.SetCookies(c.baseURL, cookies)
}

// FetchBooks retrieves the signed-in user's books.
func (c *Client) FetchBooks(ctx context.Context) ([]Book, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []Book
	if err := c.do(ctx, http.MethodGet, "/api/books", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchSessions retrieves every recorded reading session.
func (c *Client) FetchSessions(ctx context.Context) ([]ReadingSession, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []ReadingSession
	if err := c.do(ctx, http.MethodGet, "/api/sessions", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// CreateBook adds a book after applying NewBook defaults.
func (c *Client) CreateBook(ctx context.Context, book NewBook) error {
	normalized, err := book.Normalize()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/books", normalized, nil)
}

// UpdateBook replaces the editable fields of a book.
func (c *Client) UpdateBook(ctx context.Context, id int64, update BookUpdate) error {
	if id <= 0 {
		return fmt.Errorf("book id required: %w", ErrInvalidInput)
	}
	if !update.Status.Valid() {
		return fmt.Errorf("unknown status %q: %w", update.Status, ErrInvalidInput)
	}
	return c.do(ctx, http.MethodPut, bookPath(id), update, nil)
}

// DeleteBook removes a book.
func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("book id required: %w", ErrInvalidInput)
	}
	return c.do(ctx, http.MethodDelete, bookPath(id), nil, nil)
}

// StartSession opens a reading session at the book's current page count.
func (c *Client) StartSession(ctx context.Context, book Book) (SessionID, error) {
	if !book.CanStartSession() {
		return "", fmt.Errorf("start session for %q: %w", book.Title, ErrNotReading)
	}
	var payload startSessionResponse
	body := startSessionRequest{StartPagesRead: max(book.PagesRead, 0)}
	if err := c.do(ctx, http.MethodPost, bookPath(book.ID)+"/session/start", body, &payload); err != nil {
		return "", err
	}
	if payload.SessionID == "" {
		return "", fmt.Errorf("start session: empty session id: %w", ErrInvalidInput)
	}
	return payload.SessionID, nil
}

// StopSession closes a session, recording the page count reached.
func (c *Client) StopSession(ctx context.Context, bookID int64, id SessionID, endPagesRead int) error {
	if id == "" {
		return fmt.Errorf("session id required: %w", ErrInvalidInput)
	}
	body := stopSessionRequest{SessionID: id, EndPagesRead: max(endPagesRead, 0)}
	return c.do(ctx, http.MethodPost, bookPath(bookID)+"/session/stop", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", rel.Path),
			zap.Error(err),
		)
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("api request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", rel.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode >= 400 {
		return statusError(rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(path string, code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("api %s returned status %d: %w", path, code, ErrUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("api %s returned status %d: %w", path, code, ErrNotFound)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("api %s returned status %d: %w", path, code, ErrInvalidInput)
	default:
		return fmt.Errorf("api %s returned status %d", path, code)
	}
}

func bookPath(id int64) string {
	return "/api/books/" + strconv.FormatInt(id, 10)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", raw)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
