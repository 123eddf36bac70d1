package sweep

import (
	"errors"
	"io"
	"time"
)

// Default run settings, matching the HPGe simulation layout.
const (
	DefaultMacroPath  = "mac/run.mac"
	DefaultBinary     = "./G4_HPGe"
	DefaultOutputFile = "sim.root"
	DefaultArchiveDir = "."
	DefaultExtension  = "root"
	DefaultDelay      = 2 * time.Second
)

// Errors returned by Options validation.
var (
	ErrTemplateRequired = errors.New("sweep: template path is required")
	ErrBinaryRequired   = errors.New("sweep: simulation binary is required")
	ErrSameMacroPath    = errors.New("sweep: macro path must differ from the template path")
)

// Options configures a Runner. Every path is explicit so that two sweeps
// with distinct macro and output paths can run side by side.
type Options struct {
	// Template is the macro template containing the placeholder tokens.
	// Required.
	Template string

	// MacroPath is where the rendered macro is written each iteration.
	// Default: mac/run.mac
	MacroPath string

	// Binary is the simulation executable.
	// Default: ./G4_HPGe
	Binary string

	// BinaryArgs are passed before the macro path.
	BinaryArgs []string

	// WorkDir is the simulation's working directory. Relative macro and
	// output paths are resolved against it. Default: current directory.
	WorkDir string

	// OutputFile is the file the simulation writes on every run.
	// Default: sim.root
	OutputFile string

	// ArchiveDir receives the renamed output files.
	// Default: current directory
	ArchiveDir string

	// Extension of archived files.
	// Default: root
	Extension string

	// LogDir, when set, receives one log per iteration with the
	// simulation's output, named after the archive.
	LogDir string

	// Delay is the pause before each iteration. Zero disables it.
	Delay time.Duration

	// Timeout bounds a single simulation run. Zero waits indefinitely.
	Timeout time.Duration

	// KeepGoing records failed iterations and continues instead of
	// aborting the sweep.
	KeepGoing bool

	// SkipExisting skips points whose archive file already exists.
	SkipExisting bool

	// ManifestPath, when set, is rewritten after every iteration.
	ManifestPath string

	// Stdin is handed to the simulation. Nil gives it no input, which is
	// what a full-screen view that owns the terminal needs.
	Stdin io.Reader

	// Stdout and Stderr receive the simulation's output. Nil inherits the
	// sweep's own streams.
	Stdout io.Writer
	Stderr io.Writer

	// DryRun renders every macro and logs the planned commands without
	// running the simulation or touching the output file.
	DryRun bool
}

func (o *Options) setDefaults() {
	if o.MacroPath == "" {
		o.MacroPath = DefaultMacroPath
	}
	if o.Binary == "" {
		o.Binary = DefaultBinary
	}
	if o.OutputFile == "" {
		o.OutputFile = DefaultOutputFile
	}
	if o.ArchiveDir == "" {
		o.ArchiveDir = DefaultArchiveDir
	}
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
}

// Validate reports missing required settings.
func (o Options) Validate() error {
	if o.Template == "" {
		return ErrTemplateRequired
	}
	if o.Binary == "" {
		return ErrBinaryRequired
	}
	if o.MacroPath == o.Template {
		return ErrSameMacroPath
	}
	return nil
}
