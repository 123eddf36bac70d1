package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-sweep/pkg/exec"
	"github.com/mattsolo1/grove-sweep/pkg/manifest"
	"github.com/mattsolo1/grove-sweep/pkg/sweep"
)

const co60Template = "/gun/x xxx mm\n/gun/y yyy mm\n/gun/z zzz mm\n/det/d ddd cm\n/run/beamOn 100\n"

// runRoot executes the command tree with args and returns stdout and the
// error.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--no-color"))
	err := root.Execute()
	return out.String(), err
}

// useMock swaps the simulation executor for a mock that copies the macro it
// was given into the output file.
func useMock(t *testing.T, output string) *exec.MockCommandExecutor {
	t.Helper()
	mock := &exec.MockCommandExecutor{
		ExecuteFunc: func(ctx context.Context, cmd exec.Command) error {
			data, err := os.ReadFile(cmd.Args[len(cmd.Args)-1])
			if err != nil {
				return err
			}
			return os.WriteFile(output, data, 0644)
		},
	}
	prev := newExecutor
	newExecutor = func() exec.CommandExecutor { return mock }
	t.Cleanup(func() { newExecutor = prev })
	return mock
}

type sweepDir struct {
	root, template, macro, output, archive string
}

func newSweepDir(t *testing.T) sweepDir {
	t.Helper()
	dir := t.TempDir()
	d := sweepDir{
		root:     dir,
		template: filepath.Join(dir, "co60.mac"),
		macro:    filepath.Join(dir, "mac", "run.mac"),
		output:   filepath.Join(dir, "sim.root"),
		archive:  filepath.Join(dir, "out"),
	}
	require.NoError(t, os.WriteFile(d.template, []byte(co60Template), 0644))
	return d
}

func (d sweepDir) runArgs() []string {
	return []string{"--binary", "g4sim", "--macro", d.macro, "--output", d.output, "--archive-dir", d.archive, "--delay", "0s"}
}

func TestRenderCommand(t *testing.T) {
	d := newSweepDir(t)

	out, err := runRoot(t, "render", d.template, "--x", "-3", "--y", "0.3")
	require.NoError(t, err)
	assert.Equal(t, "/gun/x -3.0 mm\n/gun/y 0.3 mm\n/gun/z 0 mm\n/det/d 7 cm\n/run/beamOn 100\n", out)
}

func TestRenderCommandToFile(t *testing.T) {
	d := newSweepDir(t)

	out, err := runRoot(t, "render", d.template, "--x", "1.24", "--y", "-0.6", "--d", "10", "-o", d.macro)
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered")

	data, err := os.ReadFile(d.macro)
	require.NoError(t, err)
	assert.Equal(t, "/gun/x 1.2 mm\n/gun/y -0.6 mm\n/gun/z 0 mm\n/det/d 10 cm\n/run/beamOn 100\n", string(data))
}

func TestPointsCommand(t *testing.T) {
	out, err := runRoot(t, "points", "grid", "--x-step", "3", "--y-step", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, []string{"0", "-3.0", "-3.0", "0", "7"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"8", "3.0", "3.0", "0", "7"}, strings.Fields(lines[9]))
}

func TestPointsCommandRandomWithArchives(t *testing.T) {
	out, err := runRoot(t, "points", "random", "-n", "5", "--seed", "42", "--template", "mac/co60.mac")
	require.NoError(t, err)
	assert.Contains(t, out, "# seed 42")
	assert.Contains(t, out, "ARCHIVE")
	assert.Equal(t, 5, strings.Count(out, ".root"))

	again, err := runRoot(t, "points", "random", "-n", "5", "--seed", "42", "--template", "mac/co60.mac")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestPointsCommandRejectsUnknownMode(t *testing.T) {
	_, err := runRoot(t, "points", "spiral")
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
}

func TestGridCommandRunsSweep(t *testing.T) {
	d := newSweepDir(t)
	mock := useMock(t, d.output)
	manifestPath := filepath.Join(d.root, "runs", "co60.yml")

	args := append([]string{"grid", d.template, "--x-min", "-3", "--x-max", "-2.7", "--y-min", "0", "--y-max", "0.3",
		"--manifest", manifestPath}, d.runArgs()...)
	out, err := runRoot(t, args...)
	require.NoError(t, err)

	assert.Len(t, mock.Recorded(), 4)
	assert.Contains(t, out, "Sweep: grid, 4 points")
	assert.Contains(t, out, "Sweep summary")

	data, err := os.ReadFile(filepath.Join(d.archive, "co60_-2.7_0.3.root"))
	require.NoError(t, err)
	assert.Equal(t, "/gun/x -2.7 mm\n/gun/y 0.3 mm\n/gun/z 0 mm\n/det/d 7 cm\n/run/beamOn 100\n", string(data))

	m, err := manifest.Load(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Counts()[manifest.StatusCompleted])
	assert.NotNil(t, m.FinishedAt)

	status, err := runRoot(t, "status", manifestPath, "--all")
	require.NoError(t, err)
	assert.Contains(t, status, "Completed: 4/4")
	assert.Contains(t, status, "co60_-3.0_0.0.root")
}

func TestRandomCommandRecordsSeed(t *testing.T) {
	d := newSweepDir(t)
	useMock(t, d.output)
	manifestPath := filepath.Join(d.root, "random.yml")

	args := append([]string{"random", d.template, "-n", "3", "--seed", "7", "--manifest", manifestPath}, d.runArgs()...)
	out, err := runRoot(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Seed: 7")

	m, err := manifest.Load(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), m.Seed)
	assert.Equal(t, "random", m.Mode)
	assert.Len(t, m.Entries, 3)
}

func TestGridCommandFailedPoint(t *testing.T) {
	d := newSweepDir(t)
	mock := useMock(t, d.output)
	mock.ExecuteFunc = func(ctx context.Context, cmd exec.Command) error {
		return &exec.ExecError{Command: cmd.String(), ExitCode: 3, Err: errors.New("exit status 3")}
	}

	args := append([]string{"grid", d.template, "--x-step", "3", "--y-step", "3"}, d.runArgs()...)
	out, err := runRoot(t, args...)
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
	assert.Len(t, mock.Recorded(), 1, "the first failure aborts the sweep")
	assert.Contains(t, out, "Failed:")
	assert.NoDirExists(t, d.archive)
}

func TestGridCommandMissingBinary(t *testing.T) {
	d := newSweepDir(t)
	mock := useMock(t, d.output)
	mock.LookPathFunc = func(file string) (string, error) {
		return "", errors.New("executable file not found in $PATH")
	}

	_, err := runRoot(t, append([]string{"grid", d.template}, d.runArgs()...)...)
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
	assert.Contains(t, Describe(err), "--binary")
	assert.Empty(t, mock.Recorded())
}

func TestDescribeDuplicateArchive(t *testing.T) {
	err := fmt.Errorf("point #2: %w", sweep.ErrDuplicateArchive)
	assert.Contains(t, Describe(err), "widen the step")
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"grid", "co60.mac", "--bogus"}},
		{"missing template", []string{"grid"}},
		{"zero step", []string{"grid", "co60.mac", "--x-step", "0"}},
		{"step finer than file names", []string{"grid", "co60.mac", "--x-step", "0.05"}},
		{"more iterations than distinct points", []string{"random", "co60.mac", "-n", "5", "--min", "1", "--max", "1"}},
		{"inverted random range", []string{"random", "co60.mac", "--min", "2", "--max", "1"}},
		{"status without manifest", []string{"status"}},
		{"missing config", []string{"points", "grid", "--config", "does/not/exist.yml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runRoot(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, 2, ExitCode(err))
		})
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sweep.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("grid:\n  x:\n    step: 1.5\n  y:\n    step: 6\nconstants:\n  d: 12\n"), 0644))

	out, err := runRoot(t, "points", "grid", "--config", cfgPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1+5*2)
	assert.Equal(t, []string{"0", "-3.0", "-3.0", "0", "12"}, strings.Fields(lines[1]))
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "cs137.mac")
	require.NoError(t, os.WriteFile(tmpl, []byte("/gun/pos xxx xxx yyy\n"), 0644))

	out, err := runRoot(t, "inspect", tmpl)
	require.NoError(t, err)
	assert.Contains(t, out, "Lines:   1")
	assert.Contains(t, out, "line 1 repeats xxx")
	assert.Contains(t, out, "cs137_-3.0_-3.0.root")
}

func TestSchemaCommand(t *testing.T) {
	out, err := runRoot(t, "schema")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Grove Sweep Configuration", doc["title"])
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "version", "--json")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 2, ExitCode(usageError("bad flag")))
	assert.Equal(t, 1, ExitCode(&ExitError{Code: 1, Err: errors.New("sweep failed")}))
}
