package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-sweep/cmd/sweep_tui"
	"github.com/mattsolo1/grove-sweep/pkg/config"
	"github.com/mattsolo1/grove-sweep/pkg/exec"
	"github.com/mattsolo1/grove-sweep/pkg/logging"
	"github.com/mattsolo1/grove-sweep/pkg/params"
	"github.com/mattsolo1/grove-sweep/pkg/sweep"
)

// newExecutor is replaced in tests.
var newExecutor = func() exec.CommandExecutor {
	return &exec.RealCommandExecutor{}
}

func NewGridCmd() *cobra.Command {
	var rf runFlags
	var gf gridFlags

	cmd := &cobra.Command{
		Use:   "grid <template>",
		Short: "Run the simulation over a 2-D grid of (x, y) values",
		Long: `Run the simulation for every (x, y) on the grid, x in the outer loop.

Both axes default to -3 to 3 in steps of 0.3 (441 points). Values are
rounded to one decimal before they are substituted and used in file names.

Examples:
  # Full default grid
  sweep grid mac/co60.mac

  # Coarser grid, keep going past failed points and record progress
  sweep grid mac/co60.mac --x-step 0.6 --y-step 0.6 -k --manifest runs/co60.yml`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			rf.apply(cmd, cfg)
			gf.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return usageError("%v", err)
			}
			return runSweep(cmd, cfg, args[0], cfg.GridSource(), rf)
		},
	}
	bindRunFlags(cmd, &rf)
	bindGridFlags(cmd, &gf)
	return cmd
}

func NewRandomCmd() *cobra.Command {
	var rf runFlags
	var rnd randomFlags

	cmd := &cobra.Command{
		Use:   "random <template>",
		Short: "Run the simulation for randomly sampled (x, y) values",
		Long: `Run the simulation for a fixed number of points drawn uniformly from
[min, max] for both x and y. Values are rounded to four decimals and no (x, y)
pair is drawn twice, so every point gets its own archive. The seed is printed
and recorded so a sample can be repeated with --seed.

Examples:
  sweep random mac/co60.mac -n 50
  sweep random mac/co60.mac -n 50 --seed 1234 --min -1.5 --max 1.5`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			rf.apply(cmd, cfg)
			rnd.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return usageError("%v", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seed: %s\n", color.CyanString("%d", cfg.Random.Seed))
			return runSweep(cmd, cfg, args[0], cfg.RandomSource(), rf)
		},
	}
	bindRunFlags(cmd, &rf)
	bindRandomFlags(cmd, &rnd)
	return cmd
}

// runSweep executes the sweep and prints progress. Ctrl-C stops the sweep
// and the running simulation.
func runSweep(cmd *cobra.Command, cfg *config.Config, template string, src params.Source, rf runFlags) error {
	opts := cfg.RunOptions(template)
	opts.DryRun = rf.dryRun

	useTUI := rf.tui && isatty.IsTerminal(os.Stdout.Fd())
	if useTUI {
		// The view owns the terminal: simulation output only reaches the
		// per-point logs and sweep logs go to a file next to them.
		opts.Stdout, opts.Stderr = io.Discard, io.Discard
		logOut, closeLog, err := tuiLogOutput(cfg.Run.WorkDir, cfg.Run.LogDir)
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		defer closeLog()
		logging.SetOutput(logOut)
	} else {
		opts.Stdin = os.Stdin
	}

	runner, err := sweep.New(opts, newExecutor(), logging.NewLogger("grove-sweep"))
	if err != nil {
		return usageError("%v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var report *sweep.Report
	out := cmd.OutOrStdout()
	if useTUI {
		title := fmt.Sprintf("%s %s sweep, %d points", template, src.Name(), src.Len())
		report, err = sweep_tui.Run(ctx, runner, src, title, out)
	} else {
		fmt.Fprintf(out, "Template: %s\n", color.CyanString(template))
		fmt.Fprintf(out, "Sweep: %s, %d points\n", src.Name(), src.Len())

		p := &progress{out: out}
		runner.OnStart = p.start
		runner.OnResult = p.result
		report, err = runner.Run(ctx, src)
	}

	if report != nil {
		(&progress{out: out}).summary(report)
	}
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}

// tuiLogOutput opens sweep.log inside logDir, or discards logs when no log
// directory is configured.
func tuiLogOutput(workDir, logDir string) (io.Writer, func(), error) {
	if logDir == "" {
		return io.Discard, func() {}, nil
	}
	if workDir != "" && !filepath.IsAbs(logDir) {
		logDir = filepath.Join(workDir, logDir)
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, "sweep.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open sweep log: %w", err)
	}
	return f, func() { f.Close() }, nil
}
