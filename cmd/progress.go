package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/mattsolo1/grove-sweep/pkg/manifest"
	"github.com/mattsolo1/grove-sweep/pkg/params"
	"github.com/mattsolo1/grove-sweep/pkg/sweep"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// progress prints one line per sweep point.
type progress struct {
	out io.Writer
}

func (p *progress) start(index, total int, pt params.Point) {
	fmt.Fprintf(p.out, "%s [%d/%d] %s\n", color.YellowString("⚡"), index+1, total, pt)
}

func (p *progress) result(res sweep.Result, total int) {
	elapsed := mutedStyle.Render(res.Duration.Round(time.Millisecond).String())
	switch res.Status {
	case manifest.StatusCompleted:
		fmt.Fprintf(p.out, "%s [%d/%d] %s %s\n", color.GreenString("✓"), res.Index+1, total, res.Archive, elapsed)
	case manifest.StatusSkipped:
		fmt.Fprintf(p.out, "%s [%d/%d] %s exists, skipped\n", color.CyanString("-"), res.Index+1, total, res.Archive)
	case manifest.StatusFailed:
		fmt.Fprintf(p.out, "%s [%d/%d] %v\n", color.RedString("✗"), res.Index+1, total, res.Err)
	case manifest.StatusPending:
		fmt.Fprintf(p.out, "%s [%d/%d] would archive to %s\n", color.CyanString("○"), res.Index+1, total, res.Archive)
	}
}

func (p *progress) summary(report *sweep.Report) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, headerStyle.Render("Sweep summary"))
	fmt.Fprintf(p.out, "  Run ID:    %s\n", report.RunID)
	fmt.Fprintf(p.out, "  Points:    %d of %d visited\n", len(report.Results), report.Total)
	fmt.Fprintf(p.out, "  Completed: %s\n", color.GreenString("%d", report.Count(manifest.StatusCompleted)))
	if n := report.Count(manifest.StatusSkipped); n > 0 {
		fmt.Fprintf(p.out, "  Skipped:   %d\n", n)
	}
	if n := report.Count(manifest.StatusPending); n > 0 {
		fmt.Fprintf(p.out, "  Dry run:   %d\n", n)
	}
	if n := report.Count(manifest.StatusFailed); n > 0 {
		fmt.Fprintf(p.out, "  Failed:    %s\n", color.RedString("%d", n))
	}
}
