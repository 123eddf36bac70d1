// Package config loads sweep settings from sweep.yml.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-sweep/pkg/params"
	"github.com/mattsolo1/grove-sweep/pkg/sweep"
)

//go:generate sh -c "cd ../.. && go run ./tools/schema-generator/"

// DefaultFileName is looked up in the working directory when no config
// path is given.
const DefaultFileName = "sweep.yml"

// DefaultIters is the sample size of a random sweep.
const DefaultIters = 100

// Config is the structure of sweep.yml.
type Config struct {
	Run       RunConfig       `yaml:"run" jsonschema:"description=How each simulation run is executed and archived"`
	Grid      GridConfig      `yaml:"grid" jsonschema:"description=Axes of a grid sweep"`
	Random    RandomConfig    `yaml:"random" jsonschema:"description=Settings of a random sweep"`
	Constants ConstantsConfig `yaml:"constants" jsonschema:"description=Values substituted for zzz and ddd"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RunConfig mirrors sweep.Options.
type RunConfig struct {
	Binary       string   `yaml:"binary" jsonschema:"description=Simulation executable"`
	Args         []string `yaml:"args,omitempty" jsonschema:"description=Arguments passed before the macro path"`
	Macro        string   `yaml:"macro" jsonschema:"description=Path the rendered macro is written to"`
	Output       string   `yaml:"output" jsonschema:"description=File the simulation writes on every run"`
	ArchiveDir   string   `yaml:"archive_dir" jsonschema:"description=Directory receiving archived outputs"`
	Extension    string   `yaml:"extension" jsonschema:"description=Extension of archived outputs"`
	WorkDir      string   `yaml:"work_dir,omitempty" jsonschema:"description=Working directory of the simulation"`
	LogDir       string   `yaml:"log_dir,omitempty" jsonschema:"description=Directory for per-point simulation logs"`
	Manifest     string   `yaml:"manifest,omitempty" jsonschema:"description=Run manifest written after every point"`
	Delay        Duration `yaml:"delay" jsonschema:"description=Pause before each point"`
	Timeout      Duration `yaml:"timeout,omitempty" jsonschema:"description=Limit for a single simulation run (0 waits forever)"`
	KeepGoing    bool     `yaml:"keep_going" jsonschema:"description=Continue after a failed point"`
	SkipExisting bool     `yaml:"skip_existing" jsonschema:"description=Skip points whose archive already exists"`
}

// GridConfig holds the two swept axes.
type GridConfig struct {
	X params.Axis `yaml:"x"`
	Y params.Axis `yaml:"y"`
}

// RandomConfig holds the random sampling settings.
type RandomConfig struct {
	Iters int     `yaml:"iters" jsonschema:"description=Number of sampled points"`
	Seed  uint64  `yaml:"seed,omitempty" jsonschema:"description=Random seed (0 picks one from the clock)"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

// ConstantsConfig holds the values that stay fixed across a sweep.
type ConstantsConfig struct {
	Z float64 `yaml:"z"`
	D float64 `yaml:"d"`
}

// LoggingConfig selects the log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `yaml:"format" jsonschema:"enum=text,enum=json"`
}

// Default returns the settings used when sweep.yml is absent.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Binary:     sweep.DefaultBinary,
			Macro:      sweep.DefaultMacroPath,
			Output:     sweep.DefaultOutputFile,
			ArchiveDir: sweep.DefaultArchiveDir,
			Extension:  sweep.DefaultExtension,
			Delay:      Duration(sweep.DefaultDelay),
		},
		Grid: GridConfig{X: params.DefaultAxis(), Y: params.DefaultAxis()},
		Random: RandomConfig{
			Iters: DefaultIters,
			Min:   params.DefaultMin,
			Max:   params.DefaultMax,
		},
		Constants: ConstantsConfig{Z: params.DefaultZ, D: params.DefaultD},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration from %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional is Load, except a missing file yields the defaults.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks the settings that can be checked without a template.
func (c *Config) Validate() error {
	if err := c.Grid.X.Validate(); err != nil {
		return fmt.Errorf("grid.x: %w", err)
	}
	if err := c.Grid.Y.Validate(); err != nil {
		return fmt.Errorf("grid.y: %w", err)
	}
	if err := c.RandomSource().Validate(); err != nil {
		return fmt.Errorf("random: %w", err)
	}
	if c.Run.Delay < 0 || c.Run.Timeout < 0 {
		return fmt.Errorf("run: delay and timeout must not be negative")
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: must be 'text' or 'json', got %q", c.Logging.Format)
	}
	return nil
}

// GridSource builds the grid described by the config.
func (c *Config) GridSource() params.Grid {
	return params.Grid{X: c.Grid.X, Y: c.Grid.Y, Z: c.Constants.Z, D: c.Constants.D}
}

// RandomSource builds the random sample described by the config.
func (c *Config) RandomSource() params.Random {
	return params.Random{
		Iters: c.Random.Iters,
		Seed:  c.Random.Seed,
		Min:   c.Random.Min,
		Max:   c.Random.Max,
		Z:     c.Constants.Z,
		D:     c.Constants.D,
	}
}

// RunOptions builds runner options for the given template.
func (c *Config) RunOptions(template string) sweep.Options {
	return sweep.Options{
		Template:     template,
		MacroPath:    c.Run.Macro,
		Binary:       c.Run.Binary,
		BinaryArgs:   c.Run.Args,
		WorkDir:      c.Run.WorkDir,
		OutputFile:   c.Run.Output,
		ArchiveDir:   c.Run.ArchiveDir,
		Extension:    c.Run.Extension,
		LogDir:       c.Run.LogDir,
		Delay:        c.Run.Delay.Std(),
		Timeout:      c.Run.Timeout.Std(),
		KeepGoing:    c.Run.KeepGoing,
		SkipExisting: c.Run.SkipExisting,
		ManifestPath: c.Run.Manifest,
	}
}
