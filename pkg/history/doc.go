// Package history records countdown runs in a SQLite database.
//
// A run is inserted when it starts and completed when it stops, so the
// table also shows runs that were interrupted by a process exit (their
// stopped_at is NULL). Use ":memory:" as the path for an in-memory
// database.
package history
