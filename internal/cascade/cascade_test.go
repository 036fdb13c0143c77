package cascade

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/mailbox"
	"github.com/oshokin/alarm-clock/internal/tick"
)

// fakeReporter counts detector calls per stage.
type fakeReporter struct {
	mu       sync.Mutex
	issued   [clock.NumKinds]int
	observed [clock.NumKinds]int
	reported [clock.NumKinds][]int
}

// Issue counts a release issued toward kind.
func (f *fakeReporter) Issue(kind clock.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.issued[kind]++
}

// Observe counts a start-up evaluation.
func (f *fakeReporter) Observe(kind clock.Kind, _ int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.observed[kind]++
}

// Report records a post-tick value.
func (f *fakeReporter) Report(kind clock.Kind, value int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reported[kind] = append(f.reported[kind], value)
}

// drain consumes the mailbox and counts messages per kind until ctx is done.
func drain(ctx context.Context, m *mailbox.Mailbox, counts *[clock.NumKinds]int, done chan<- struct{}) {
	defer close(done)

	for {
		msg, err := m.Receive(ctx)
		if err != nil {
			return
		}

		counts[msg.Kind]++
	}
}

// TestCounter_Wraps verifies value and overflow count for arbitrary tick counts.
func TestCounter_Wraps(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 59, 60, 61, 3599, 3600, 7261} {
		c := NewCounter(clock.SecondsPerMinute, 0)
		overflows := 0

		for range n {
			if c.Tick() {
				overflows++
			}
		}

		require.Equal(t, n%60, c.Value(), "ticks=%d", n)
		require.Equal(t, n/60, overflows, "ticks=%d", n)
	}
}

// TestNewCounter_PanicsOnInvalidValue documents that out-of-range state is a defect.
func TestNewCounter_PanicsOnInvalidValue(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { NewCounter(0, 0) })
	require.Panics(t, func() { NewCounter(24, 24) })
	require.Panics(t, func() { NewCounter(60, -1) })
}

// TestNew_Validation checks required collaborators and the start time.
func TestNew_Validation(t *testing.T) {
	t.Parallel()

	m, err := mailbox.New(mailbox.DefaultCapacity)
	require.NoError(t, err)

	_, err = New(&Options{Reporter: new(fakeReporter), Out: m})
	require.Error(t, err)

	_, err = New(&Options{Source: tick.NewManual(), Out: m})
	require.Error(t, err)

	_, err = New(&Options{Source: tick.NewManual(), Reporter: new(fakeReporter)})
	require.Error(t, err)

	_, err = New(&Options{
		Source:   tick.NewManual(),
		Reporter: new(fakeReporter),
		Out:      m,
		Start:    clock.Time{Hour: 24},
	})
	require.ErrorIs(t, err, clock.ErrInvalidTime)
}

// TestCascade_CountsEveryTick drives N ticks through all three stages.
func TestCascade_CountsEveryTick(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		const n = 3*3600 + 125

		source := tick.NewManual()
		reporter := new(fakeReporter)

		m, err := mailbox.New(mailbox.DefaultCapacity)
		require.NoError(t, err)

		c, err := New(&Options{Source: source, Reporter: reporter, Out: m})
		require.NoError(t, err)

		c.Prime()
		require.Equal(t, [clock.NumKinds]int{1, 1, 1}, reporter.observed)

		var counts [clock.NumKinds]int

		drained := make(chan struct{})
		go drain(ctx, m, &counts, drained)

		stopped := make(chan error, 1)

		go func() {
			stopped <- c.Run(ctx)
		}()

		source.Advance(n)
		synctest.Wait()

		cancel()
		require.NoError(t, <-stopped)
		<-drained

		require.Equal(t, n%60, c.Stage(clock.Seconds).Value())
		require.Equal(t, (n/60)%60, c.Stage(clock.Minutes).Value())
		require.Equal(t, n/3600, c.Stage(clock.Hours).Value())

		require.Equal(t, [clock.NumKinds]int{n, n / 60, n / 3600}, counts)
		require.Equal(t, n/60, reporter.issued[clock.Minutes])
		require.Equal(t, n/3600, reporter.issued[clock.Hours])
		require.Len(t, reporter.reported[clock.Minutes], n/60)
		require.Len(t, reporter.reported[clock.Hours], n/3600)
	})
}

// TestCascade_StalledStageKeepsReleases pauses Minutes and checks no overflow is lost.
func TestCascade_StalledStageKeepsReleases(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		const stalled = 5

		source := tick.NewManual()
		reporter := new(fakeReporter)

		m, err := mailbox.New(mailbox.DefaultCapacity)
		require.NoError(t, err)

		c, err := New(&Options{Source: source, Reporter: reporter, Out: m})
		require.NoError(t, err)

		var counts [clock.NumKinds]int

		drained := make(chan struct{})
		go drain(ctx, m, &counts, drained)

		// Only Seconds runs while Minutes is paused.
		secondsDone := make(chan error, 1)

		go func() {
			secondsDone <- c.Stage(clock.Seconds).Run(ctx)
		}()

		source.Advance(stalled * 60)
		synctest.Wait()
		require.Equal(t, stalled, c.Pending(clock.Minutes))

		minutesDone := make(chan error, 1)

		go func() {
			minutesDone <- c.Stage(clock.Minutes).Run(ctx)
		}()

		synctest.Wait()
		require.Zero(t, c.Pending(clock.Minutes))

		cancel()
		require.NoError(t, <-secondsDone)
		require.NoError(t, <-minutesDone)
		<-drained

		require.Equal(t, stalled, c.Stage(clock.Minutes).Value())
		require.Equal(t, []int{1, 2, 3, 4, 5}, reporter.reported[clock.Minutes])
		require.Equal(t, stalled, counts[clock.Minutes])
	})
}

// TestCascade_StartTime begins at a configured time and wraps the day.
func TestCascade_StartTime(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		source := tick.NewManual()

		m, err := mailbox.New(mailbox.DefaultCapacity)
		require.NoError(t, err)

		c, err := New(&Options{
			Source:   source,
			Reporter: new(fakeReporter),
			Out:      m,
			Start:    clock.Time{Hour: 23, Minute: 59, Second: 20},
		})
		require.NoError(t, err)

		var counts [clock.NumKinds]int

		drained := make(chan struct{})
		go drain(ctx, m, &counts, drained)

		stopped := make(chan error, 1)

		go func() {
			stopped <- c.Run(ctx)
		}()

		source.Advance(40)
		synctest.Wait()

		cancel()
		require.NoError(t, <-stopped)
		<-drained

		require.Zero(t, c.Stage(clock.Seconds).Value())
		require.Zero(t, c.Stage(clock.Minutes).Value())
		require.Zero(t, c.Stage(clock.Hours).Value())
	})
}
