// Package instance keeps a single alarm-clock process in charge of the output device.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another process with the same executable is found.
var ErrAlreadyRunning = errors.New("another instance is already running")

// lister returns the process table; replaced in tests.
type lister func() ([]ps.Process, error)

// EnsureSingle fails with ErrAlreadyRunning if another process runs the current executable.
func EnsureSingle() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	return ensureSingle(ps.Processes, os.Getpid(), filepath.Base(executable))
}

func ensureSingle(list lister, self int, executable string) error {
	processList, err := list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if !sameExecutable(process.Executable(), executable) {
			continue
		}

		return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, process.Pid())
	}

	return nil
}

// sameExecutable compares names case-insensitively on Windows.
func sameExecutable(a, b string) bool {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return strings.EqualFold(a, b)
	}

	return a == b
}
