// Package storage persists captured documents and their embedding vectors
// in SQLite.
//
// Two logical stores back the system: a documents table keyed by an
// auto-assigned integer id (with secondary indexes on capture timestamp and
// canonical URL) and a vectors table keyed by document id. The package owns
// all mutation of persisted state; other components only read through the
// Store interface.
//
// Inserts are deduplicated by canonical URL: a repeat capture of the same
// logical page within a three-day window is rejected rather than stored
// again. Candidate scans walk the timestamp index backward and apply filter
// predicates per row. This is a deliberate linear scan, not an indexed range
// query; browsing-history corpora are small enough (tens of thousands of
// rows) that a scan bounded by the caller's limit stays fast. That is a
// scalability ceiling, not an accident.
//
// Two SQLite drivers are supported via build tags: mattn/go-sqlite3 when
// building with CGO and the sqlite_cgo tag, and modernc.org/sqlite for pure
// Go builds.
package storage
