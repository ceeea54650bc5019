// Package session persists the device state between runs.
//
// The snapshot is the whole State as JSON, optionally zstd-compressed,
// stored under one key. Saving clears the task stack and truncates recents;
// loading never fails: a missing, unreadable or corrupt snapshot is logged
// and reported as absent so the caller starts from factory defaults.
//
// Components:
//   - Manager: Load and Save against a storage.KV
//   - Writer: background saver fed by a store listener. It keeps only the
//     newest pending snapshot and saves through a circuit breaker.
//
// Example Usage:
//
//	mgr := session.NewManager(kv, session.Options{Key: "android_emulator_state_v1"})
//	state, ok := mgr.Load(ctx)
//	writer := session.NewWriter(mgr, session.WriterOptions{})
//	unsubscribe := store.Subscribe(writer.Submit)
//	defer writer.Close()
package session
