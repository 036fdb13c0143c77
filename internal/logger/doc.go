// Package logger wraps zap with a global console logger on stderr, an atomic
// level set from configuration, and context helpers.
//
// Every clock task accepts a context and extracts the logger from it, so each
// stage, the printer and the alarm watcher log under their own name.
package logger
