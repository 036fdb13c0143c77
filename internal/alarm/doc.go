// Package alarm joins the cascade stages' target matches into alarm events.
//
// The Detector keeps one matched flag per stage under hierarchical gating and
// raises a counting notification when all three line up. The Watcher consumes
// those notifications and prints the alarm line on the shared output device.
package alarm
