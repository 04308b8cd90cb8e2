// Package state holds the latest book and session snapshot shared between
// the background poller and the UI.
//
// The poller is the single writer and calls Update after every fetch. The
// UI reads with Snapshot on its own tick. Both sides copy slices so neither
// can mutate what the other sees.
//
// A failed poll keeps the previous books and sessions and only records the
// error and bumps ConsecutiveFailures; two or more in a row mark the
// snapshot offline. Before the first poll completes, Seed may install data
// restored from the local cache, flagged with FromCache.
//
// The zero Store is ready to use.
package state
