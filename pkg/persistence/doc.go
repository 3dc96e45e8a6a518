// Package persistence provides runtime state persistence for a countdown.
//
// This package handles the JSON serialization of the countdown snapshot
// (current value, whether a run was active, configured start and interval)
// so a restarted process can show the value it last held.
package persistence
