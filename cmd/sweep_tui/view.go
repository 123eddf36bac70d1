package sweep_tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-sweep/pkg/manifest"
	"github.com/mattsolo1/grove-sweep/pkg/sweep"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.Title))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %d/%d", m.bar.ViewAs(m.Percent()), m.Finished, m.Total)
	if eta := m.Remaining(); eta > 0 {
		fmt.Fprintf(&b, "  %s", mutedStyle.Render("~"+eta.Round(time.Second).String()+" left"))
	}
	b.WriteString("\n\n")

	for _, res := range m.Recent {
		b.WriteString(resultLine(res))
		b.WriteString("\n")
	}
	if m.Current != nil {
		fmt.Fprintf(&b, "%s #%d %s\n", m.spinner.View(), m.Current.Index, m.Current.Point)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s  %s\n",
		successStyle.Render(fmt.Sprintf("%d completed", m.Counts[manifest.StatusCompleted])),
		mutedStyle.Render(fmt.Sprintf("%d skipped", m.Counts[manifest.StatusSkipped])),
		errorStyle.Render(fmt.Sprintf("%d failed", m.Counts[manifest.StatusFailed])))

	switch {
	case m.Done && m.Err != nil:
		fmt.Fprintf(&b, "\n%s %v\n", errorStyle.Render("✗"), m.Err)
	case m.Done:
		fmt.Fprintf(&b, "\n%s sweep finished\n", successStyle.Render("✓"))
	case m.Stopping:
		b.WriteString(mutedStyle.Render("\nstopping..."))
		b.WriteString("\n")
	default:
		b.WriteString(mutedStyle.Render("\n" + m.KeyMap.Stop.Help().Key + " " + m.KeyMap.Stop.Help().Desc +
			" • " + m.KeyMap.Quit.Help().Key + " " + m.KeyMap.Quit.Help().Desc))
		b.WriteString("\n")
	}
	return b.String()
}

func resultLine(res sweep.Result) string {
	switch res.Status {
	case manifest.StatusCompleted:
		return fmt.Sprintf("%s #%d %s %s", successStyle.Render("✓"), res.Index, res.Archive,
			mutedStyle.Render(res.Duration.Round(time.Millisecond).String()))
	case manifest.StatusSkipped:
		return fmt.Sprintf("%s #%d %s exists", mutedStyle.Render("-"), res.Index, res.Archive)
	case manifest.StatusFailed:
		return fmt.Sprintf("%s #%d %s: %v", errorStyle.Render("✗"), res.Index, res.Point, res.Err)
	default:
		return fmt.Sprintf("%s #%d %s", mutedStyle.Render("○"), res.Index, res.Archive)
	}
}
