package paths

import "path/filepath"

// Entries under the data root
const (
	SnapshotsDir = "snapshots"
	BadgerDir    = "badger"
	SQLiteFile   = "phoneos.db"
)

// Layout resolves backend locations under one data root
type Layout struct {
	Root string
}

// Snapshots is the file backend directory
func (l Layout) Snapshots() string {
	return filepath.Join(l.Root, SnapshotsDir)
}

// Badger is the badger database directory
func (l Layout) Badger() string {
	return filepath.Join(l.Root, BadgerDir)
}

// SQLite is the sqlite database file
func (l Layout) SQLite() string {
	return filepath.Join(l.Root, SQLiteFile)
}
