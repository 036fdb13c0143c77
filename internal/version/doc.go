// Package version exposes build metadata for the alarm-clock binaries.
//
// Version, Commit and BuildTime are set through -ldflags; Short and Full
// render them for the CLI and for the start-up log line.
package version
