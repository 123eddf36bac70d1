package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-sweep/pkg/macro"
	"github.com/mattsolo1/grove-sweep/pkg/params"
	"github.com/mattsolo1/grove-sweep/pkg/sweep"
)

func NewPointsCmd() *cobra.Command {
	var gf gridFlags
	var rnd randomFlags
	var template string
	var z, d float64

	cmd := &cobra.Command{
		Use:   "points <grid|random>",
		Short: "List the points a sweep would visit",
		Long: `List the (x, y, z, d) points of a grid or random sweep in the order they
would be run. With --template the archive name of every point is shown too.

Examples:
  sweep points grid --x-step 1.5 --y-step 1.5
  sweep points random -n 5 --seed 7 --template mac/co60.mac`,
		Args:      usageArgs(cobra.ExactArgs(1)),
		ValidArgs: []string{"grid", "random"},
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

			var src params.Source
			switch args[0] {
			case "grid":
				gf.apply(cmd, cfg)
				src = cfg.GridSource()
			case "random":
				rnd.apply(cmd, cfg)
				src = cfg.RandomSource()
			default:
				return usageError("unknown sweep mode %q (want grid or random)", args[0])
			}
			if err := src.Validate(); err != nil {
				return usageError("invalid %s sweep: %v", src.Name(), err)
			}

			out := cmd.OutOrStdout()
			if rs, ok := src.(params.Random); ok {
				fmt.Fprintf(out, "# seed %d\n", rs.Seed)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			if template != "" {
				base := macro.BaseName(template)
				fmt.Fprintln(w, "#\tX\tY\tZ\tD\tARCHIVE")
				for i, p := range src.Points() {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", i, params.FormatFloat(p.X), params.FormatFloat(p.Y),
						params.FormatConst(p.Z), params.FormatConst(p.D), sweep.ArchiveName(base, p, cfg.Run.Extension))
				}
			} else {
				fmt.Fprintln(w, "#\tX\tY\tZ\tD")
				for i, p := range src.Points() {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i, params.FormatFloat(p.X), params.FormatFloat(p.Y),
						params.FormatConst(p.Z), params.FormatConst(p.D))
				}
			}
			return w.Flush()
		},
	}

	bindGridFlags(cmd, &gf)
	bindRandomFlags(cmd, &rnd)
	cmd.Flags().StringVarP(&template, "template", "t", "", "Show archive names for this macro template")
	cmd.Flags().Float64Var(&z, "z", 0, "Value substituted for zzz")
	cmd.Flags().Float64Var(&d, "d", 0, "Value substituted for ddd")
	return cmd
}
