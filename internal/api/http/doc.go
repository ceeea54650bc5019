// Package http provides the REST surface of the emulator.
//
// Routes:
//   - GET  /              service identity
//   - GET  /health        liveness, persistence breaker, traffic totals
//   - GET  /state         the whole device state
//   - GET  /status        status bar view (clock, battery, network, unread)
//   - GET  /apps          catalog, home grid, dock, task stack, recents
//   - GET  /notifications the shade and its unread count
//   - GET  /options       themes, wallpapers and quick settings on offer
//   - POST /actions       dispatch a wire action; 202 on accept, 400 on a
//     malformed body or unknown type
//
// Example:
//
//	curl -X POST localhost:8000/actions -d '{"type":"OPEN_APP","id":"clock"}'
package http
