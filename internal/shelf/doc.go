// Package shelf derives the view state shown for a reading collection.
//
// # Overview
//
// Given a snapshot of books and reading sessions, shelf computes everything
// a surface needs to draw: per-book progress, the filtered and sorted book
// list, collection statistics, pages read per day, the average daily pace,
// and the current reading streak. Every function is pure. Nothing here
// performs I/O, reads the clock, or keeps state between calls, so the
// functions may run concurrently on shared inputs.
//
// # Data Flow
//
//	   books ───────────┬──────────────► Aggregate ──────► Stats
//	                    │
//	                    └──► FilterSort(filter, sort) ───► []Book
//	                             │
//	                             └── Progress per book (sort key)
//
//	   sessions ──► DailyTotals ──► Daily ──┬──► SortedDays ─► chart rows
//	                                        │
//	                       today ──────────►└──► PaceAndStreak ─► Pace
//
// Derive wires the whole graph for one snapshot and returns a View.
//
// # Normalization
//
// Inputs are normalized rather than rejected:
//
//   - pages read are clamped to [0, total]; a zero total means 0% progress
//   - negative session deltas count as zero pages
//   - a missing rating is 0 and is ignored by the average
//   - an empty genre is ignored by the top-genre count
//   - averages and genres that cannot be computed read "—"
//
// Shape errors such as a missing status never reach this package: the
// booktracker decoder rejects them with ErrInvalidInput.
//
// # Ordering
//
// FilterSort is stable. Equal titles, progress values, or ratings keep
// their input order, and an unrecognized sort key keeps the input order
// entirely. Titles compare with root-locale collation.
//
// # Days
//
// A session belongs to the calendar date written in its start timestamp.
// The streak starts at the caller's today and walks backward while each
// day has pages read; callers pick the timezone when computing today.
package shelf
