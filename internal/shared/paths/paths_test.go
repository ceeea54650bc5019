package paths

import (
	"path/filepath"
	"testing"
)

func TestLayout(t *testing.T) {
	l := Layout{Root: "data"}

	if got := l.Snapshots(); got != filepath.Join("data", "snapshots") {
		t.Errorf("Snapshots() = %s", got)
	}
	if got := l.Badger(); got != filepath.Join("data", "badger") {
		t.Errorf("Badger() = %s", got)
	}
	if got := l.SQLite(); got != filepath.Join("data", "phoneos.db") {
		t.Errorf("SQLite() = %s", got)
	}
}
