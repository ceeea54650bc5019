// Package ws streams device state to WebSocket clients and accepts actions
// from them.
//
// Client to server:
//
//	{"type":"dispatch","action":{"type":"OPEN_APP","id":"clock"}}
//	{"type":"ping"}
//
// Server to client:
//
//	{"type":"state","state":{...}}   on connect and after every change
//	{"type":"pong"}
//	{"type":"error","error":"..."}
//
// A client that cannot keep up with state pushes is disconnected; it can
// reconnect and will receive the current state immediately.
package ws
