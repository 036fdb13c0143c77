// Package action starts an external command when the alarm goes off.
package action

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrEmptyCommand indicates that no program was configured.
var ErrEmptyCommand = errors.New("alarm command is empty")

// Command is a program and its arguments started on every alarm.
type Command []string

// Start launches the command asynchronously; the OS takes over the rest.
// The process is not waited for, so a slow program never delays the clock.
func (c Command) Start(ctx context.Context) error {
	if len(c) == 0 || c[0] == "" {
		return ErrEmptyCommand
	}

	//nolint:gosec // The command comes from the operator's own configuration.
	cmd := exec.CommandContext(ctx, c[0], c[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c[0], err)
	}

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}
