package alarm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/semaphore"
)

var errTestStart = errors.New("test start error")

// memorySink records written lines.
type memorySink struct {
	mu    sync.Mutex
	lines []string
}

// WriteLine appends line to the recorded output.
func (m *memorySink) WriteLine(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lines = append(m.lines, line)

	return nil
}

// Lines returns a copy of the recorded output.
func (m *memorySink) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.lines...)
}

// fakeStarter counts Start calls and returns err.
type fakeStarter struct {
	mu    sync.Mutex
	calls int
	err   error
}

// Start records the call.
func (f *fakeStarter) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	return f.err
}

// TestWatcher_PrintsOneLinePerNotification checks counting semantics end to end.
func TestWatcher_PrintsOneLinePerNotification(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		notify := semaphore.New()
		out := new(memorySink)
		starter := &fakeStarter{err: errTestStart}
		w := NewWatcher(notify, out, WithAction(starter))

		// Two alarms before the watcher starts are not lost.
		notify.Give()
		notify.Give()

		errs := make(chan error, 1)

		go func() {
			errs <- w.Run(ctx)
		}()

		synctest.Wait()
		require.Equal(t, []string{Line, Line}, out.Lines())

		notify.Give()
		synctest.Wait()
		require.Len(t, out.Lines(), 3)
		require.Equal(t, 3, starter.calls)

		cancel()
		require.NoError(t, <-errs)
	})
}

// TestWatcher_Highlight checks that the highlighted line still contains the alarm text.
func TestWatcher_Highlight(t *testing.T) {
	t.Parallel()

	w := NewWatcher(semaphore.New(), new(memorySink), WithHighlight())
	require.Contains(t, w.line, Line)
}
