// Package sweep runs an external simulation once per parameter point.
//
// Every iteration renders the macro template for the point, writes it to the
// macro path, runs the simulation binary against it, waits for it to exit and
// moves the simulation's output file to a name that encodes the point. The
// macro path and output file are a single slot reused by every iteration, so
// iterations are strictly sequential.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-sweep/pkg/exec"
	"github.com/mattsolo1/grove-sweep/pkg/macro"
	"github.com/mattsolo1/grove-sweep/pkg/manifest"
	"github.com/mattsolo1/grove-sweep/pkg/params"
)

var (
	// ErrBinaryNotFound is returned when the simulation executable cannot be resolved.
	ErrBinaryNotFound = errors.New("sweep: simulation binary not found")
	// ErrPointsFailed summarises a KeepGoing sweep with failed iterations.
	ErrPointsFailed = errors.New("sweep: one or more points failed")
	// ErrStopped is returned when Stop ended the sweep early.
	ErrStopped = errors.New("sweep: stopped")
	// ErrDuplicateArchive fails a point whose archive name an earlier point
	// of the same sweep already used.
	ErrDuplicateArchive = errors.New("sweep: archive name already used in this sweep")
)

// IterationError ties a failure to the point that caused it.
type IterationError struct {
	Index int
	Point params.Point
	Err   error
}

func (e *IterationError) Error() string {
	return fmt.Sprintf("point #%d (%s): %v", e.Index, e.Point, e.Err)
}

func (e *IterationError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one iteration.
type Result struct {
	Index     int
	Point     params.Point
	Archive   string
	Status    manifest.Status
	ExitCode  int
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Report collects the results of a sweep.
type Report struct {
	RunID   string
	Mode    string
	Total   int
	Results []Result
}

// Count returns how many results ended with status s.
func (r *Report) Count(s manifest.Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Runner executes sweeps. It is not safe for concurrent use: iterations
// share the macro and output slot.
type Runner struct {
	opts     Options
	executor exec.CommandExecutor
	log      *logrus.Entry
	base     string
	pause    func(ctx context.Context, d time.Duration) error
	stopped  atomic.Bool

	// OnStart is called before each iteration.
	OnStart func(index, total int, p params.Point)
	// OnResult is called after each iteration.
	OnResult func(res Result, total int)
}

// New validates opts and returns a Runner.
func New(opts Options, executor exec.CommandExecutor, log *logrus.Entry) (*Runner, error) {
	opts.setDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if filepath.Clean(opts.resolve(opts.MacroPath)) == filepath.Clean(opts.Template) {
		return nil, ErrSameMacroPath
	}
	if executor == nil {
		executor = &exec.RealCommandExecutor{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Runner{
		opts:     opts,
		executor: executor,
		log:      log,
		base:     macro.BaseName(opts.Template),
		pause:    sleep,
	}, nil
}

// Stop ends the sweep once the current point is done. Safe to call from
// any goroutine.
func (r *Runner) Stop() {
	r.stopped.Store(true)
}

// Options returns the effective options, defaults included.
func (r *Runner) Options() Options {
	return r.opts
}

// ArchivePath is where the output for p ends up.
func (r *Runner) ArchivePath(p params.Point) string {
	return filepath.Join(r.opts.resolve(r.opts.ArchiveDir), ArchiveName(r.base, p, r.opts.Extension))
}

// resolve anchors a relative path at WorkDir.
func (o Options) resolve(path string) string {
	if o.WorkDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(o.WorkDir, path)
}

// binaryPath turns a binary given with a directory part into an absolute
// path, anchored at WorkDir. The child process starts inside WorkDir, so a
// relative path would otherwise be resolved twice. Bare names are left for
// PATH lookup.
func (o Options) binaryPath() string {
	if !strings.ContainsRune(o.Binary, filepath.Separator) && !strings.Contains(o.Binary, "/") {
		return o.Binary
	}
	path := o.resolve(o.Binary)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Run visits every point of src in order.
//
// By default the first failing iteration aborts the sweep and is returned as
// an *IterationError. With KeepGoing the sweep continues and ErrPointsFailed
// is returned at the end. The report is returned in every case where at
// least the setup succeeded.
func (r *Runner) Run(ctx context.Context, src params.Source) (*Report, error) {
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s sweep: %w", src.Name(), err)
	}
	if _, err := os.Stat(r.opts.Template); err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}

	if !r.opts.DryRun {
		if _, err := r.executor.LookPath(r.opts.binaryPath()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBinaryNotFound, r.opts.Binary, err)
		}
		macroPath := r.opts.resolve(r.opts.MacroPath)
		if err := os.MkdirAll(filepath.Dir(macroPath), 0755); err != nil {
			return nil, fmt.Errorf("create macro directory: %w", err)
		}
		if err := AcquireSlot(macroPath); err != nil {
			return nil, err
		}
		defer func() {
			if err := RemoveLockFile(macroPath); err != nil {
				r.log.WithError(err).Warn("Failed to remove macro lock file")
			}
		}()
	}

	points := src.Points()
	m := manifest.New(src.Name(), r.opts.Template, r.opts.Binary, len(points))
	if rs, ok := src.(params.Random); ok {
		m.Seed = rs.Seed
	}
	report := &Report{RunID: m.RunID, Mode: src.Name(), Total: len(points)}

	log := r.log.WithFields(logrus.Fields{
		"run_id":   m.RunID,
		"mode":     src.Name(),
		"template": r.opts.Template,
	})
	log.WithField("points", len(points)).Info("Starting sweep")

	var failed int
	archived := make(map[string]int, len(points))
	for i, p := range points {
		if err := ctx.Err(); err != nil {
			r.finish(m, log)
			return report, fmt.Errorf("sweep interrupted before point #%d: %w", i, err)
		}
		if r.stopped.Load() {
			r.finish(m, log)
			return report, fmt.Errorf("%w before point #%d", ErrStopped, i)
		}

		if r.OnStart != nil {
			r.OnStart(i, len(points), p)
		}
		var res Result
		if first, ok := archived[r.ArchivePath(p)]; ok {
			res = r.duplicatePoint(i, p, first)
		} else {
			res = r.runPoint(ctx, i, p)
		}
		if res.Status != manifest.StatusFailed {
			archived[res.Archive] = i
		}
		report.Results = append(report.Results, res)
		m.Record(entryFor(res))
		r.saveManifest(m, log)
		if r.OnResult != nil {
			r.OnResult(res, len(points))
		}

		if res.Status != manifest.StatusFailed {
			continue
		}
		failed++
		iterErr := &IterationError{Index: i, Point: p, Err: res.Err}
		if ctx.Err() != nil || !r.opts.KeepGoing {
			r.finish(m, log)
			return report, iterErr
		}
		log.WithError(iterErr).Warn("Point failed, continuing")
	}

	r.finish(m, log)
	if failed > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrPointsFailed, failed, len(points))
	}
	return report, nil
}

func (r *Runner) finish(m *manifest.Manifest, log *logrus.Entry) {
	m.Finish(time.Now())
	r.saveManifest(m, log)
	counts := m.Counts()
	log.WithFields(logrus.Fields{
		"completed": counts[manifest.StatusCompleted],
		"failed":    counts[manifest.StatusFailed],
		"skipped":   counts[manifest.StatusSkipped],
	}).Info("Sweep finished")
}

func (r *Runner) saveManifest(m *manifest.Manifest, log *logrus.Entry) {
	if r.opts.ManifestPath == "" {
		return
	}
	if err := m.Save(r.opts.ManifestPath); err != nil {
		log.WithError(err).Warn("Failed to save sweep manifest")
	}
}

// duplicatePoint fails a point without running it because its archive
// would replace the one written for point first.
func (r *Runner) duplicatePoint(index int, p params.Point, first int) Result {
	res := Result{
		Index:     index,
		Point:     p,
		Archive:   r.ArchivePath(p),
		Status:    manifest.StatusFailed,
		StartedAt: time.Now(),
	}
	res.Err = fmt.Errorf("%w: %s belongs to point #%d", ErrDuplicateArchive, filepath.Base(res.Archive), first)
	r.log.WithFields(logrus.Fields{
		"index": index,
		"x":     params.FormatFloat(p.X),
		"y":     params.FormatFloat(p.Y),
	}).WithError(res.Err).Error("Sweep point failed")
	return res
}

// runPoint performs one iteration. Failures are reported in the result.
func (r *Runner) runPoint(ctx context.Context, index int, p params.Point) (res Result) {
	res = Result{
		Index:     index,
		Point:     p,
		Archive:   r.ArchivePath(p),
		Status:    manifest.StatusRunning,
		StartedAt: time.Now(),
	}
	log := r.log.WithFields(logrus.Fields{
		"index": index,
		"x":     params.FormatFloat(p.X),
		"y":     params.FormatFloat(p.Y),
	})
	defer func() {
		res.Duration = time.Since(res.StartedAt)
		if res.Err != nil {
			res.Status = manifest.StatusFailed
			log.WithError(res.Err).WithField("exit_code", res.ExitCode).Error("Sweep point failed")
		}
	}()

	if r.opts.SkipExisting {
		if _, err := os.Stat(res.Archive); err == nil {
			log.WithField("archive", res.Archive).Info("Archive exists, skipping point")
			res.Status = manifest.StatusSkipped
			return res
		}
	}

	if err := r.pause(ctx, r.opts.Delay); err != nil {
		res.Err = err
		return res
	}

	// The template is re-read every iteration so edits made during a long
	// sweep take effect on the next point.
	tmpl, err := macro.Load(r.opts.Template)
	if err != nil {
		res.Err = err
		return res
	}
	lines := tmpl.Render(p)

	cmd := exec.Command{
		Name: r.opts.binaryPath(),
		Args: append(append([]string(nil), r.opts.BinaryArgs...), r.opts.MacroPath),
		Dir:  r.opts.WorkDir,
	}

	if r.opts.DryRun {
		log.WithFields(logrus.Fields{
			"command": cmd.String(),
			"archive": res.Archive,
		}).Info("Dry run, not executing")
		log.Debug(strings.Join(lines, ""))
		res.Status = manifest.StatusPending
		return res
	}

	if err := macro.Write(r.opts.resolve(r.opts.MacroPath), lines); err != nil {
		res.Err = err
		return res
	}

	// A crashed run can leave its output behind; it must not be archived
	// as this point's result.
	outputPath := r.opts.resolve(r.opts.OutputFile)
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		res.Err = fmt.Errorf("clear previous output: %w", err)
		return res
	}

	cmd.Stdin = r.opts.Stdin
	cmd.Stdout, cmd.Stderr = r.opts.Stdout, r.opts.Stderr
	if r.opts.LogDir != "" {
		logFile, err := r.openIterationLog(p)
		if err != nil {
			res.Err = err
			return res
		}
		defer logFile.Close()
		cmd.Stdout = io.MultiWriter(orDefault(cmd.Stdout, os.Stdout), logFile)
		cmd.Stderr = io.MultiWriter(orDefault(cmd.Stderr, os.Stderr), logFile)
	}

	runCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	log.WithField("command", cmd.String()).Info("Running simulation")
	if err := r.executor.Execute(runCtx, cmd); err != nil {
		res.ExitCode = exec.ExitCode(err)
		res.Err = fmt.Errorf("simulation failed: %w", err)
		return res
	}

	if err := moveFile(outputPath, res.Archive); err != nil {
		res.Err = err
		return res
	}

	res.Status = manifest.StatusCompleted
	log.WithFields(logrus.Fields{
		"archive":     res.Archive,
		"duration_ms": time.Since(res.StartedAt).Milliseconds(),
	}).Info("Archived simulation output")
	return res
}

// openIterationLog creates the log file for a point inside LogDir.
func (r *Runner) openIterationLog(p params.Point) (*os.File, error) {
	dir := r.opts.resolve(r.opts.LogDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	name := strings.TrimSuffix(ArchiveName(r.base, p, r.opts.Extension), "."+r.opts.Extension) + ".log"
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("create iteration log: %w", err)
	}
	return f, nil
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}

func entryFor(res Result) manifest.Entry {
	e := manifest.Entry{
		Index:      res.Index,
		X:          res.Point.X,
		Y:          res.Point.Y,
		Z:          res.Point.Z,
		D:          res.Point.D,
		Status:     res.Status,
		ExitCode:   res.ExitCode,
		StartedAt:  res.StartedAt,
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Status == manifest.StatusCompleted || res.Status == manifest.StatusSkipped {
		e.Archive = res.Archive
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	return e
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
