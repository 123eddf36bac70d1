package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-sweep/pkg/manifest"
	"github.com/mattsolo1/grove-sweep/pkg/params"
)

func NewStatusCmd() *cobra.Command {
	var failedOnly bool
	var showAll bool

	cmd := &cobra.Command{
		Use:   "status [manifest]",
		Short: "Show the progress recorded in a sweep manifest",
		Long: `Summarise a sweep manifest written with --manifest (or run.manifest in
sweep.yml). Without an argument the configured manifest path is used.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path := cfg.Run.Manifest
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return usageError("no manifest given and run.manifest is not set")
			}

			m, err := manifest.Load(path)
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}

			out := cmd.OutOrStdout()
			counts := m.Counts()
			state := color.YellowString("in progress")
			if m.FinishedAt != nil {
				state = color.GreenString("finished")
			}
			fmt.Fprintln(out, headerStyle.Render("Sweep "+m.RunID))
			fmt.Fprintf(out, "  Mode:      %s\n", m.Mode)
			if m.Seed != 0 {
				fmt.Fprintf(out, "  Seed:      %d\n", m.Seed)
			}
			fmt.Fprintf(out, "  Template:  %s\n", m.Template)
			fmt.Fprintf(out, "  Started:   %s\n", m.StartedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "  State:     %s\n", state)
			fmt.Fprintf(out, "  Completed: %d/%d\n", counts[manifest.StatusCompleted], m.Total)
			fmt.Fprintf(out, "  Skipped:   %d\n", counts[manifest.StatusSkipped])
			fmt.Fprintf(out, "  Failed:    %d\n", counts[manifest.StatusFailed])
			fmt.Fprintf(out, "  Pending:   %d\n", counts[manifest.StatusPending])

			entries := m.Entries
			if failedOnly {
				entries = m.Failed()
			}
			if !showAll && !failedOnly {
				return nil
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("  no matching points"))
				return nil
			}

			fmt.Fprintln(out)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tX\tY\tSTATUS\tEXIT\tDETAIL")
			for _, e := range entries {
				detail := e.Archive
				if e.Error != "" {
					detail = e.Error
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n", e.Index, params.FormatFloat(e.X), params.FormatFloat(e.Y),
					e.Status, e.ExitCode, detail)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&failedOnly, "failed", false, "List the failed points")
	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "List every recorded point")
	return cmd
}
