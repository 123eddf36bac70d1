package exec

import (
	"context"
	"io"
	"strings"
)

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Stdin feeds the process. Nil connects it to the null device.
	Stdin io.Reader
	// Stdout and Stderr receive the process output. Nil inherits the
	// parent's standard streams.
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line the way it would be typed.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// CommandExecutor defines an interface for running external commands.
// This abstraction allows for easier testing by providing a mockable interface.
type CommandExecutor interface {
	// LookPath searches for an executable named file in the directories
	// named by the PATH environment variable.
	LookPath(file string) (string, error)

	// Execute runs the command and waits for it to exit. A non-zero exit
	// status is reported as an *ExecError.
	Execute(ctx context.Context, cmd Command) error
}
