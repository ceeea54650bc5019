// Package client is a typed HTTP client for the emulator's REST surface.
//
// GET requests retry on transport errors and 5xx answers. Dispatches are
// never retried after the server has answered, since most actions are not
// idempotent (a second OPEN_APP opens a second instance).
package client
