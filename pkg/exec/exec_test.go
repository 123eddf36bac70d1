package exec

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandString(t *testing.T) {
	assert.Equal(t, "./G4_HPGe mac/run.mac", Command{Name: "./G4_HPGe", Args: []string{"mac/run.mac"}}.String())
	assert.Equal(t, "true", Command{Name: "true"}.String())
}

func TestMockRecordsCommands(t *testing.T) {
	m := &MockCommandExecutor{}
	ctx := context.Background()

	require.NoError(t, m.Execute(ctx, Command{Name: "./G4_HPGe", Args: []string{"mac/run.mac"}}))
	require.NoError(t, m.Execute(ctx, Command{Name: "./G4_HPGe", Args: []string{"-t", "4", "mac/run.mac"}}))

	assert.Equal(t, []string{"./G4_HPGe mac/run.mac", "./G4_HPGe -t 4 mac/run.mac"}, m.Recorded())

	path, err := m.LookPath("G4_HPGe")
	require.NoError(t, err)
	assert.Equal(t, "/path/to/G4_HPGe", path)
}

func TestMockExecuteFunc(t *testing.T) {
	boom := errors.New("boom")
	m := &MockCommandExecutor{
		ExecuteFunc: func(ctx context.Context, cmd Command) error { return boom },
	}
	err := m.Execute(context.Background(), Command{Name: "sim"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, m.Recorded(), 1)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 3, ExitCode(&ExecError{ExitCode: 3, Err: errors.New("exit status 3")}))
	assert.Equal(t, -1, ExitCode(errors.New("not started")))
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := (&RealCommandExecutor{}).LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRealExecutorSuccess(t *testing.T) {
	requireShell(t)
	var stdout bytes.Buffer
	err := (&RealCommandExecutor{}).Execute(context.Background(), Command{
		Name:   "sh",
		Args:   []string{"-c", "echo hello"},
		Stdout: &stdout,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", stdout.String())
}

func TestRealExecutorStdin(t *testing.T) {
	requireShell(t)
	var stdout bytes.Buffer
	err := (&RealCommandExecutor{}).Execute(context.Background(), Command{
		Name:   "sh",
		Args:   []string{"-c", "cat"},
		Stdin:  strings.NewReader("/run/beamOn 10\n"),
		Stdout: &stdout,
	})
	require.NoError(t, err)
	assert.Equal(t, "/run/beamOn 10\n", stdout.String())

	// without a reader the process sees end of input instead of the terminal
	stdout.Reset()
	err = (&RealCommandExecutor{}).Execute(context.Background(), Command{
		Name:   "sh",
		Args:   []string{"-c", "cat; echo done"},
		Stdout: &stdout,
	})
	require.NoError(t, err)
	assert.Equal(t, "done\n", stdout.String())
}

func TestRealExecutorFailure(t *testing.T) {
	requireShell(t)
	var stderr bytes.Buffer
	err := (&RealCommandExecutor{}).Execute(context.Background(), Command{
		Name:   "sh",
		Args:   []string{"-c", "echo geometry overlap >&2; exit 3"},
		Stdout: &bytes.Buffer{},
		Stderr: &stderr,
	})
	require.Error(t, err)

	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, 3, execErr.ExitCode)
	assert.Contains(t, execErr.Output, "geometry overlap")
	assert.Contains(t, err.Error(), "exit code 3")
	assert.Equal(t, "geometry overlap\n", stderr.String())
}

func TestRealExecutorCanceled(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := (&RealCommandExecutor{}).Execute(ctx, Command{Name: "sh", Args: []string{"-c", "sleep 5"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTailBufferKeepsEnd(t *testing.T) {
	tb := &tailBuffer{max: 8}
	_, _ = tb.Write([]byte("0123456789"))
	_, _ = tb.Write([]byte("ab"))
	assert.Equal(t, "456789ab", tb.String())
	assert.True(t, strings.HasSuffix(tb.String(), "ab"))
}
