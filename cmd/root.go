package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool
)

// NewRootCmd builds the sweep command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a simulation across a parameter sweep",
		Long: `Run an external simulation once per parameter point.

For every point the macro template is rendered (xxx, yyy, zzz and ddd are
replaced with the point's x, y, z and d), written to the macro path, and the
simulation binary is run against it. The simulation's output file is then
renamed to {template}_{x}_{y}.root so each point keeps its own result.

Settings are read from ./sweep.yml when present; flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the sweep config (default: ./sweep.yml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	rootCmd.AddCommand(NewGridCmd())
	rootCmd.AddCommand(NewRandomCmd())
	rootCmd.AddCommand(NewPointsCmd())
	rootCmd.AddCommand(NewRenderCmd())
	rootCmd.AddCommand(NewInspectCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewSchemaCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
