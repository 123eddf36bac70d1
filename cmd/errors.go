package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-sweep/pkg/sweep"
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// usageError marks an error caused by bad flags or arguments (exit code 2).
func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Err: fmt.Errorf(format, args...)}
}

// usageArgs makes argument validation failures exit like flag errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError("%v", err)
		}
		return nil
	}
}

// ExitCode maps an error returned by the command tree to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Describe renders err for the terminal, adding a hint for errors a user can
// act on.
func Describe(err error) string {
	switch {
	case errors.Is(err, sweep.ErrSlotBusy):
		return err.Error() + " (another sweep is using this macro path; pick another with --macro)"
	case errors.Is(err, sweep.ErrDuplicateArchive):
		return err.Error() + " (two points round to the same values; widen the step or the random range)"
	case errors.Is(err, sweep.ErrBinaryNotFound):
		return err.Error() + " (set --binary or run.binary in sweep.yml)"
	}
	return err.Error()
}
