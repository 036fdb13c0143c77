// Package state persists the clock status between runs.
//
// The FileRepository stores and loads the status as protobuf JSON on disk so a
// restarted clock can resume from the time it showed when it stopped.
package state
