package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-sweep/pkg/macro"
	"github.com/mattsolo1/grove-sweep/pkg/params"
)

func NewRenderCmd() *cobra.Command {
	var x, y, z, d float64
	var output string

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a macro template for a single point",
		Long: `Render the macro template for one (x, y) point exactly as a sweep would and
print it, or write it to a file with -o. The simulation is not run.

Examples:
  sweep render mac/co60.mac --x -3 --y 0.3
  sweep render mac/co60.mac --x 1.2 --y -0.6 -o mac/run.mac`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("z") {
				cfg.Constants.Z = z
			}
			if cmd.Flags().Changed("d") {
				cfg.Constants.D = d
			}

			tmpl, err := macro.Load(args[0])
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			p := params.Point{X: params.Round1(x), Y: params.Round1(y), Z: cfg.Constants.Z, D: cfg.Constants.D}
			lines := tmpl.Render(p)

			if output == "" {
				for _, line := range lines {
					fmt.Fprint(cmd.OutOrStdout(), line)
				}
				return nil
			}
			if err := macro.Write(output, lines); err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Rendered %s for %s to %s\n", color.GreenString("✓"), args[0], p, output)
			return nil
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "Value substituted for xxx")
	cmd.Flags().Float64Var(&y, "y", 0, "Value substituted for yyy")
	cmd.Flags().Float64Var(&z, "z", 0, "Value substituted for zzz (default 0)")
	cmd.Flags().Float64Var(&d, "d", 0, "Value substituted for ddd (default 7)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the rendered macro to this file instead of stdout")
	return cmd
}
