// Package logtail reads the end of shelf's own log file for the Logs view.
//
// Read extracts the last N lines with a ring buffer, so large logs are
// scanned once without being held in memory. A missing file yields no lines
// rather than an error, since the log is only created on first write.
//
// Parse turns one zap JSON line into an Entry with its time, level, message
// and remaining fields flattened to strings. Anything that is not a JSON
// object, such as a panic trace appended to the file, is kept verbatim in
// Entry.Raw.
package logtail
