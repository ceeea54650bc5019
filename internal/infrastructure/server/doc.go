// Package server assembles the emulator, its REST and stream surfaces and
// the middleware stack into one HTTP server.
package server
