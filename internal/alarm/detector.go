package alarm

import (
	"sync"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/semaphore"
)

// Recorder receives alarm events for metrics.
type Recorder interface {
	Alarm()
}

// Detector joins the per-stage match flags into a single alarm notification.
//
// Hours asserts its flag on its own match. Minutes asserts only while Hours is
// asserted, Seconds only while both are. A Seconds assertion fires the alarm
// and clears all three flags.
//
// Each stage's flag is recomputed on that stage's ticks. A gated evaluation is
// deferred while a slower stage still has overflow releases it has not
// processed, so the gate never reads a flag from the previous cascade instant.
type Detector struct {
	// target is the immutable alarm time.
	target clock.Time
	// notify receives one release per alarm.
	notify *semaphore.Counting
	// recorder is optional.
	recorder Recorder

	// mu guards the fields below.
	mu sync.Mutex
	// matched holds the stage flags, indexed by clock.Kind.
	matched [clock.NumKinds]bool
	// deferred marks stages whose own value matched while a slower stage lagged.
	deferred [clock.NumKinds]bool
	// pending counts releases issued to a stage and not yet processed by it.
	pending [clock.NumKinds]int
	// fired is the number of alarms raised.
	fired uint64
}

// NewDetector creates a detector for target that signals alarms on notify.
func NewDetector(target clock.Time, notify *semaphore.Counting, recorder Recorder) *Detector {
	return &Detector{
		target:   target,
		notify:   notify,
		recorder: recorder,
	}
}

// Target returns the alarm time.
func (d *Detector) Target() clock.Time {
	return d.target
}

// Issue records an overflow release sent toward kind.
// It must be called before the release is given.
func (d *Detector) Issue(kind clock.Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[kind]++
}

// Observe evaluates a stage value that was not produced by a release,
// such as the start-up value.
func (d *Detector) Observe(kind clock.Kind, value int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.evaluate(kind, value)
}

// Report evaluates the post-tick value of a stage. For Minutes and Hours it
// also marks one issued release as processed.
func (d *Detector) Report(kind clock.Kind, value int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if kind != clock.Seconds && d.pending[kind] > 0 {
		d.pending[kind]--
	}

	d.evaluate(kind, value)
}

// Matched returns a copy of the stage flags indexed by clock.Kind.
func (d *Detector) Matched() [clock.NumKinds]bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.matched
}

// Fired returns the number of alarms raised so far.
func (d *Detector) Fired() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.fired
}

// evaluate must be called with mu held.
func (d *Detector) evaluate(kind clock.Kind, value int) {
	hit := value == d.target.Get(kind)

	switch {
	case kind == clock.Hours:
		d.matched[kind] = hit
	case hit:
		d.deferred[kind] = true
	default:
		// The stage moved past the window; an unresolved match is stale now.
		d.matched[kind] = false
		d.deferred[kind] = false
	}

	d.resolve()
}

// resolve settles deferred evaluations from the slowest gated stage down.
func (d *Detector) resolve() {
	for _, kind := range []clock.Kind{clock.Minutes, clock.Seconds} {
		if !d.deferred[kind] || !d.settledAbove(kind) {
			continue
		}

		d.deferred[kind] = false
		d.matched[kind] = d.gateAbove(kind)

		if kind == clock.Seconds && d.matched[kind] {
			d.fire()
		}
	}
}

// settledAbove reports whether every stage slower than kind has processed its releases.
func (d *Detector) settledAbove(kind clock.Kind) bool {
	for k := kind + 1; k <= clock.Hours; k++ {
		if d.pending[k] > 0 {
			return false
		}
	}

	return true
}

// gateAbove reports whether every stage slower than kind is asserted.
func (d *Detector) gateAbove(kind clock.Kind) bool {
	for k := kind + 1; k <= clock.Hours; k++ {
		if !d.matched[k] {
			return false
		}
	}

	return true
}

func (d *Detector) fire() {
	d.matched = [clock.NumKinds]bool{}
	d.fired++

	if d.recorder != nil {
		d.recorder.Alarm()
	}

	d.notify.Give()
}
