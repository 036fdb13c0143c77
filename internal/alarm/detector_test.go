package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/semaphore"
)

// countingRecorder counts Alarm calls.
type countingRecorder struct {
	alarms int
}

// Alarm increments the alarm count.
func (r *countingRecorder) Alarm() { r.alarms++ }

// driver replays a cascade synchronously against a Detector, one stage at a time,
// so every test controls exactly when a slower stage processes its releases.
type driver struct {
	d     *Detector
	value [clock.NumKinds]int
}

func newDriver(target clock.Time) (*driver, *semaphore.Counting) {
	notify := semaphore.New()
	dr := &driver{d: NewDetector(target, notify, nil)}

	for _, kind := range []clock.Kind{clock.Hours, clock.Minutes, clock.Seconds} {
		dr.d.Observe(kind, 0)
	}

	return dr, notify
}

// step advances kind by one and returns whether it overflowed.
// The overflow release is issued but not processed.
func (dr *driver) step(kind clock.Kind) bool {
	dr.value[kind]++

	overflow := dr.value[kind] == kind.Modulus()
	if overflow {
		dr.value[kind] = 0

		if next, ok := kind.Next(); ok {
			dr.d.Issue(next)
		}
	}

	dr.d.Report(kind, dr.value[kind])

	return overflow
}

// second runs one full cascade instant with slower stages processing at once.
func (dr *driver) second() {
	if !dr.step(clock.Seconds) {
		return
	}

	if !dr.step(clock.Minutes) {
		return
	}

	dr.step(clock.Hours)
}

// TestDetector_FiresOnceAtTarget drives the reference target for two hours.
func TestDetector_FiresOnceAtTarget(t *testing.T) {
	t.Parallel()

	dr, notify := newDriver(clock.Time{Hour: 0, Minute: 1, Second: 30})

	for range 89 {
		dr.second()
	}

	require.Zero(t, dr.d.Fired())

	dr.second()
	require.Equal(t, uint64(1), dr.d.Fired())
	require.Equal(t, 1, notify.Pending())
	require.Equal(t, [clock.NumKinds]bool{}, dr.d.Matched())

	for range 2 * 3600 {
		dr.second()
	}

	require.Equal(t, uint64(1), dr.d.Fired())
}

// TestDetector_RearmsNextDay checks that the alarm fires again when the cascade re-qualifies.
func TestDetector_RearmsNextDay(t *testing.T) {
	t.Parallel()

	dr, notify := newDriver(clock.Time{Hour: 0, Minute: 1, Second: 30})

	const day = 24 * 3600

	for range day + 90 {
		dr.second()
	}

	require.Equal(t, uint64(2), dr.d.Fired())
	require.Equal(t, 2, notify.Pending())
}

// TestDetector_NoFalseAlarmOnWrongHour ensures a minutes/seconds match in another hour is ignored.
func TestDetector_NoFalseAlarmOnWrongHour(t *testing.T) {
	t.Parallel()

	dr, _ := newDriver(clock.Time{Hour: 1, Minute: 0, Second: 5})

	// Minute 0, second 5 of hour 0 must not fire.
	for range 10 {
		dr.second()
	}

	require.Zero(t, dr.d.Fired())

	// 1:00:05.
	for range 3600 - 10 + 5 {
		dr.second()
	}

	require.Equal(t, uint64(1), dr.d.Fired())
}

// TestDetector_DefersWhileSlowerStageLags covers a target on a cascade boundary.
func TestDetector_DefersWhileSlowerStageLags(t *testing.T) {
	t.Parallel()

	dr, notify := newDriver(clock.Time{Hour: 0, Minute: 1, Second: 0})

	for range 59 {
		dr.second()
	}

	// Seconds wraps to 0 and matches, but Minutes has not processed the release yet.
	require.True(t, dr.step(clock.Seconds))
	require.Zero(t, dr.d.Fired())

	// Once Minutes catches up, the deferred evaluation fires.
	dr.step(clock.Minutes)
	require.Equal(t, uint64(1), dr.d.Fired())
	require.Equal(t, 1, notify.Pending())
}

// TestDetector_StaleMinutesDoNotFire makes sure a lagging Minutes flag from the
// matching minute cannot satisfy the next minute's second 0.
func TestDetector_StaleMinutesDoNotFire(t *testing.T) {
	t.Parallel()

	dr, _ := newDriver(clock.Time{Hour: 0, Minute: 1, Second: 0})

	for range 60 {
		dr.second()
	}

	require.Equal(t, uint64(1), dr.d.Fired())

	// Reach 0:01:59; Minutes is 1 and would be asserted if re-gated.
	for range 59 {
		dr.second()
	}

	// 0:02:00 with Minutes lagging at 1.
	require.True(t, dr.step(clock.Seconds))
	dr.step(clock.Minutes)
	require.Equal(t, uint64(1), dr.d.Fired())
}

// TestDetector_PartialMatchClearsOnRollover verifies flags follow each stage's latest tick.
func TestDetector_PartialMatchClearsOnRollover(t *testing.T) {
	t.Parallel()

	dr, _ := newDriver(clock.Time{Hour: 0, Minute: 1, Second: 30})

	for range 60 {
		dr.second()
	}

	matched := dr.d.Matched()
	require.True(t, matched[clock.Hours])
	require.True(t, matched[clock.Minutes])
	require.False(t, matched[clock.Seconds])

	// Seconds advances without reaching 30: Minutes stays asserted.
	dr.second()
	require.True(t, dr.d.Matched()[clock.Minutes])
}

// TestDetector_ObserveAtStart fires immediately when the clock starts on the target.
func TestDetector_ObserveAtStart(t *testing.T) {
	t.Parallel()

	notify := semaphore.New()
	recorder := new(countingRecorder)
	target := clock.Time{Hour: 3, Minute: 4, Second: 5}
	d := NewDetector(target, notify, recorder)

	d.Observe(clock.Hours, 3)
	d.Observe(clock.Minutes, 4)
	d.Observe(clock.Seconds, 5)

	require.Equal(t, uint64(1), d.Fired())
	require.Equal(t, 1, recorder.alarms)
	require.Equal(t, target, d.Target())
}

// TestDetector_NotificationsAccumulate ensures unconsumed alarms are kept.
func TestDetector_NotificationsAccumulate(t *testing.T) {
	t.Parallel()

	notify := semaphore.New()
	d := NewDetector(clock.Time{}, notify, nil)

	for range 3 {
		d.Observe(clock.Hours, 0)
		d.Observe(clock.Minutes, 0)
		d.Observe(clock.Seconds, 0)
	}

	require.Equal(t, uint64(3), d.Fired())
	require.Equal(t, 3, notify.Pending())
}
