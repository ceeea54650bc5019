// Package main is the entry point for the PhoneOS emulator server.
//
// The server owns one emulated device: it restores the last snapshot,
// drives the clock, persists every change and serves the state over REST
// and a WebSocket stream.
//
// Configuration:
//   - .env file in the working directory, when present
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Defaults: port 8000, file storage under ./data
//	./server
//
//	# Throwaway device, debug logs
//	./server -storage memory -dev
//
//	# Compressed snapshots in SQLite
//	STORAGE_COMPRESS=true ./server -storage sqlite -data ./phone
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown with a final snapshot
package main
