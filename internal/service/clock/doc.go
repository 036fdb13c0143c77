// Package clock runs the alarm clock: the counter cascade, the alarm detector,
// the printer and the alarm watcher, plus the optional status and metrics
// listeners, all bound to one context.
package clock
