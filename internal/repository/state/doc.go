// Package state persists the pending console rings.
//
// The FileRepository stores and loads the rings as protobuf JSON on disk so
// that rings armed from the console survive a bell-trigger restart.
package state
