package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-sweep/pkg/macro"
	"github.com/mattsolo1/grove-sweep/pkg/params"
	"github.com/mattsolo1/grove-sweep/pkg/sweep"
)

func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <template>",
		Short: "Show which placeholders a macro template uses",
		Long: `Report the placeholders (xxx, yyy, zzz, ddd) found in a macro template, the
lines that will be rewritten and the archive names a sweep will produce.

Only the first occurrence of each placeholder on a line is replaced; lines
with repeated placeholders are flagged.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tmpl, err := macro.Load(args[0])
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}

			out := cmd.OutOrStdout()
			used := tmpl.UsedTokens()
			fmt.Fprintln(out, headerStyle.Render("Template "+args[0]))
			fmt.Fprintf(out, "  Lines:   %d\n", len(tmpl.Lines))
			for _, tok := range macro.Tokens {
				mark := color.GreenString("✓")
				if !slices.Contains(used, tok) {
					mark = color.YellowString("-")
				}
				fmt.Fprintf(out, "  %s %s\n", mark, tok)
			}

			for i, line := range tmpl.Lines {
				for _, tok := range macro.Tokens {
					if strings.Count(line, tok) > 1 {
						fmt.Fprintf(out, "  %s line %d repeats %s; only the first is replaced\n",
							color.YellowString("!"), i+1, tok)
					}
				}
			}

			base := macro.BaseName(args[0])
			first := params.Point{X: cfg.Grid.X.Min, Y: cfg.Grid.Y.Min, Z: cfg.Constants.Z, D: cfg.Constants.D}
			fmt.Fprintf(out, "  Archive: %s\n", sweep.ArchiveName(base, first, cfg.Run.Extension))
			if !slices.Contains(used, macro.TokenX) || !slices.Contains(used, macro.TokenY) {
				fmt.Fprintf(out, "  %s template does not use both xxx and yyy; every point runs the same macro\n",
					color.YellowString("!"))
			}
			return nil
		},
	}
	return cmd
}
