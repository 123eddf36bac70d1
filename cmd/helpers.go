package cmd

import (
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-sweep/pkg/config"
	"github.com/mattsolo1/grove-sweep/pkg/logging"
)

// loadConfig reads the sweep config, applies the global flags and sets up
// logging and color output.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadOptional(config.DefaultFileName)
	}
	if err != nil {
		return nil, usageError("%v", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if err := logging.Configure(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr()); err != nil {
		return nil, usageError("%v", err)
	}

	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	color.NoColor = noColor || !isTTY
	if color.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	return cfg, nil
}

// runFlags are the run settings every sweep command accepts.
type runFlags struct {
	binary       string
	args         []string
	macro        string
	output       string
	archiveDir   string
	extension    string
	workDir      string
	logDir       string
	manifest     string
	delay        time.Duration
	timeout      time.Duration
	keepGoing    bool
	skipExisting bool
	dryRun       bool
	tui          bool
	z            float64
	d            float64
}

func bindRunFlags(cmd *cobra.Command, f *runFlags) {
	flags := cmd.Flags()
	flags.StringVar(&f.binary, "binary", "", "Simulation executable (default ./G4_HPGe)")
	flags.StringArrayVar(&f.args, "arg", nil, "Argument passed to the simulation before the macro path (repeatable)")
	flags.StringVar(&f.macro, "macro", "", "Path the rendered macro is written to (default mac/run.mac)")
	flags.StringVar(&f.output, "output", "", "File the simulation writes on every run (default sim.root)")
	flags.StringVar(&f.archiveDir, "archive-dir", "", "Directory receiving archived outputs (default .)")
	flags.StringVar(&f.extension, "ext", "", "Extension of archived outputs (default root)")
	flags.StringVar(&f.workDir, "work-dir", "", "Working directory of the simulation")
	flags.StringVar(&f.logDir, "log-dir", "", "Write each point's simulation output to this directory")
	flags.StringVar(&f.manifest, "manifest", "", "Record progress in this YAML manifest")
	flags.DurationVar(&f.delay, "delay", 0, "Pause before each point (default 2s)")
	flags.DurationVar(&f.timeout, "timeout", 0, "Limit for a single simulation run (0 waits forever)")
	flags.BoolVarP(&f.keepGoing, "keep-going", "k", false, "Continue after a failed point")
	flags.BoolVar(&f.skipExisting, "skip-existing", false, "Skip points whose archive already exists")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Render macros and print commands without running the simulation")
	flags.BoolVar(&f.tui, "tui", false, "Show a live progress view (simulation output goes to --log-dir only)")
	flags.Float64Var(&f.z, "z", 0, "Value substituted for zzz (default 0)")
	flags.Float64Var(&f.d, "d", 0, "Value substituted for ddd (default 7)")
}

// apply copies the flags the user set onto cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("binary") {
		cfg.Run.Binary = f.binary
	}
	if flags.Changed("arg") {
		cfg.Run.Args = f.args
	}
	if flags.Changed("macro") {
		cfg.Run.Macro = f.macro
	}
	if flags.Changed("output") {
		cfg.Run.Output = f.output
	}
	if flags.Changed("archive-dir") {
		cfg.Run.ArchiveDir = f.archiveDir
	}
	if flags.Changed("ext") {
		cfg.Run.Extension = f.extension
	}
	if flags.Changed("work-dir") {
		cfg.Run.WorkDir = f.workDir
	}
	if flags.Changed("log-dir") {
		cfg.Run.LogDir = f.logDir
	}
	if flags.Changed("manifest") {
		cfg.Run.Manifest = f.manifest
	}
	if flags.Changed("delay") {
		cfg.Run.Delay = config.Duration(f.delay)
	}
	if flags.Changed("timeout") {
		cfg.Run.Timeout = config.Duration(f.timeout)
	}
	if flags.Changed("keep-going") {
		cfg.Run.KeepGoing = f.keepGoing
	}
	if flags.Changed("skip-existing") {
		cfg.Run.SkipExisting = f.skipExisting
	}
	if flags.Changed("z") {
		cfg.Constants.Z = f.z
	}
	if flags.Changed("d") {
		cfg.Constants.D = f.d
	}
}

// gridFlags describe the two grid axes.
type gridFlags struct {
	xMin, xMax, xStep float64
	yMin, yMax, yStep float64
}

func bindGridFlags(cmd *cobra.Command, f *gridFlags) {
	flags := cmd.Flags()
	flags.Float64Var(&f.xMin, "x-min", -3, "Lower bound of x")
	flags.Float64Var(&f.xMax, "x-max", 3, "Upper bound of x")
	flags.Float64Var(&f.xStep, "x-step", 0.3, "Step of x")
	flags.Float64Var(&f.yMin, "y-min", -3, "Lower bound of y")
	flags.Float64Var(&f.yMax, "y-max", 3, "Upper bound of y")
	flags.Float64Var(&f.yStep, "y-step", 0.3, "Step of y")
}

func (f *gridFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	set := func(name string, dst *float64, v float64) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("x-min", &cfg.Grid.X.Min, f.xMin)
	set("x-max", &cfg.Grid.X.Max, f.xMax)
	set("x-step", &cfg.Grid.X.Step, f.xStep)
	set("y-min", &cfg.Grid.Y.Min, f.yMin)
	set("y-max", &cfg.Grid.Y.Max, f.yMax)
	set("y-step", &cfg.Grid.Y.Step, f.yStep)
}

// randomFlags describe a random sample.
type randomFlags struct {
	iters int
	seed  uint64
	min   float64
	max   float64
}

func bindRandomFlags(cmd *cobra.Command, f *randomFlags) {
	flags := cmd.Flags()
	flags.IntVarP(&f.iters, "iters", "n", 100, "Number of points to sample")
	flags.Uint64Var(&f.seed, "seed", 0, "Random seed (0 picks one from the clock)")
	flags.Float64Var(&f.min, "min", -3, "Lower bound of x and y")
	flags.Float64Var(&f.max, "max", 3, "Upper bound of x and y")
}

// apply copies the flags onto cfg and fixes the seed, so the seed printed
// and recorded is the one actually used.
func (f *randomFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("iters") {
		cfg.Random.Iters = f.iters
	}
	if flags.Changed("seed") {
		cfg.Random.Seed = f.seed
	}
	if flags.Changed("min") {
		cfg.Random.Min = f.min
	}
	if flags.Changed("max") {
		cfg.Random.Max = f.max
	}
	if cfg.Random.Seed == 0 {
		cfg.Random.Seed = uint64(time.Now().UnixNano())
	}
}
