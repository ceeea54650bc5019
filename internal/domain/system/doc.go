// Package system holds the device model of the emulator and the pure
// transition function that evolves it.
//
// The model covers power and lock phase, appearance, battery, connectivity,
// quick settings, the notification shade, the app catalog, and the task
// stack. Nothing in this package performs I/O or reads the clock: actions
// carry their own timestamps and instance ids, stamped by the store.
//
// Task stack:
//   - Running is a stack; the last element is the foreground app
//   - Opening an app always foregrounds it and unlocks the device
//   - Closing moves the instance to the head of Recents (max 12, no duplicates)
//
// Airplane mode:
//   - Enabling saves the current network and forces it off
//   - Disabling restores the saved network with wifi taken from quick settings
//
// Example Usage:
//
//	s := system.Default(now, apps, grid)
//	s = system.Transition(s, system.Boot{})
//	s = system.Transition(s, system.OpenApp{ID: "clock", InstanceID: id, At: now})
//	top, _ := s.Foreground()
package system
