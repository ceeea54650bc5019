// Package paths defines the on-disk layout under the emulator's data root.
//
//	<root>/snapshots/   file backend, one file per key
//	<root>/badger/      badger database
//	<root>/phoneos.db   sqlite database
//
// Each backend owns its own entry, so switching STORAGE_BACKEND never makes
// one backend read another's files.
package paths
