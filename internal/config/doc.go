// Package config defines the alarm-clock settings and provides helpers to
// load, validate and save them in YAML format.
//
// The Config type holds the tick period, queue capacity, alarm and start
// times, the output device and the optional status and metrics listeners.
package config
