// Package clock contains core domain types shared by the clock pipeline.
//
// It defines Kind (which cascade stage produced a value), Message (the value
// handed from a stage to the printer), Time (an hours/minutes/seconds triple
// used both as the alarm target and as the printer's display snapshot).
package clock
