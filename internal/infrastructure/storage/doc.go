// Package storage provides keyed byte stores for state snapshots.
//
// Backends:
//   - memory: process-local map, lost on exit
//   - file: one file per key under a directory, written by atomic rename
//   - badger: embedded BadgerDB (in-memory mode for tests)
//   - sqlite: a single key/value table in SQLite (":memory:" for tests)
//
// Every backend returns ErrNotFound for a missing key and is safe for
// concurrent use.
package storage
