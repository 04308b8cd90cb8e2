// Package booktracker provides an HTTP client for the BookTracker API.
//
// # Overview
//
// BookTracker is a small personal library service: it stores the user's
// books and the reading sessions recorded against them, proxies Google
// Books search, and authenticates with a session cookie. This package is
// the only place shelf talks to it.
//
// The package is split into:
//
//   - client.go: HTTP plumbing, book and session endpoints
//   - auth.go: signup, login, logout, and /api/me
//   - search.go: Google Books search through /api/search
//   - types.go: payloads mirroring the API, status parsing, normalization
//
// # Client Usage
//
//	client, err := booktracker.NewClient("http://127.0.0.1:8080",
//		booktracker.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	if err := client.Login(ctx, booktracker.Credentials{Username: u, Password: p}); err != nil {
//		return err
//	}
//	books, err := client.FetchBooks(ctx)
//
// # API Endpoints
//
//   - GET    /api/books                       list books
//   - POST   /api/books                       create a book
//   - PUT    /api/books/{id}                  replace editable fields
//   - DELETE /api/books/{id}                  remove a book
//   - POST   /api/books/{id}/session/start    {startPagesRead} → {sessionId}
//   - POST   /api/books/{id}/session/stop     {sessionId, endPagesRead}
//   - GET    /api/sessions                    list reading sessions
//   - GET    /api/search/{q}                  Google Books volumes
//   - POST   /api/signup, /api/login          {username, password}
//   - POST   /api/logout
//   - GET    /api/me                          200 or 401
//
// # Request Handling
//
// All requests:
//   - carry the caller's context
//   - set Accept: application/json and User-Agent: shelf/0.1
//   - set a fresh X-Request-ID, logged at debug level with the outcome
//   - share a cookie jar so a login persists across calls
//
// # Error Handling
//
// HTTP failures name the path and status ("api /api/books returned status
// 500"). 401/403 wrap ErrUnauthorized, 404 wraps ErrNotFound, and 400/422
// wrap ErrInvalidInput. A book whose status is absent or unknown fails
// decoding with ErrInvalidInput, so callers never see a malformed status.
//
// # Normalization
//
// UpdateFromBook applies the rules the web front end enforces before a PUT:
// pages read are kept only for books being read and are capped at the
// total, and a missing rating becomes 3. NewBook.Normalize defaults the
// status to Not Started and the rating to 3.
package booktracker
