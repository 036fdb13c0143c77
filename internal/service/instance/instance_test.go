package instance

import (
	"errors"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

var errTestList = errors.New("test list error")

// fakeProcess is a static ps.Process.
type fakeProcess struct {
	pid  int
	name string
}

// Pid returns the process ID.
func (f fakeProcess) Pid() int { return f.pid }

// PPid returns zero; the parent is irrelevant here.
func (f fakeProcess) PPid() int { return 0 }

// Executable returns the executable name.
func (f fakeProcess) Executable() string { return f.name }

func listOf(processes ...ps.Process) lister {
	return func() ([]ps.Process, error) {
		return processes, nil
	}
}

// TestEnsureSingle covers self, foreign and duplicate processes.
func TestEnsureSingle(t *testing.T) {
	t.Parallel()

	const self = 100

	// Only this process.
	err := ensureSingle(listOf(fakeProcess{pid: self, name: "alarm-clock"}), self, "alarm-clock")
	require.NoError(t, err)

	// Unrelated processes.
	err = ensureSingle(listOf(
		fakeProcess{pid: self, name: "alarm-clock"},
		fakeProcess{pid: 7, name: "alarm-clock-status"},
		fakeProcess{pid: 8, name: "bash"},
	), self, "alarm-clock")
	require.NoError(t, err)

	// A second clock.
	err = ensureSingle(listOf(
		fakeProcess{pid: self, name: "alarm-clock"},
		fakeProcess{pid: 9, name: "alarm-clock"},
	), self, "alarm-clock")
	require.ErrorIs(t, err, ErrAlreadyRunning)

	// Listing failure.
	err = ensureSingle(func() ([]ps.Process, error) { return nil, errTestList }, self, "alarm-clock")
	require.ErrorIs(t, err, errTestList)
}
