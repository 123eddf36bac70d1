package sweep_tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-sweep/pkg/params"
	"github.com/mattsolo1/grove-sweep/pkg/sweep"
)

type outcome struct {
	report *sweep.Report
	err    error
}

// Run drives runner over src while rendering the live view to out. It
// returns once the sweep has ended, even if the view failed to start.
func Run(ctx context.Context, runner *sweep.Runner, src params.Source, title string, out io.Writer) (*sweep.Report, error) {
	ctx, kill := context.WithCancel(ctx)
	defer kill()

	model := New(title, src.Len(), runner.Stop, kill)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithoutSignalHandler())

	runner.OnStart = func(index, total int, p params.Point) {
		program.Send(PointStartedMsg{Index: index, Point: p})
	}
	runner.OnResult = func(res sweep.Result, total int) {
		program.Send(PointFinishedMsg{Result: res})
	}

	done := make(chan outcome, 1)
	go func() {
		report, err := runner.Run(ctx, src)
		done <- outcome{report: report, err: err}
		program.Send(SweepDoneMsg{Err: err})
	}()

	if _, err := program.Run(); err != nil {
		// The view is gone; stop the sweep rather than run it unattended.
		runner.Stop()
		res := <-done
		if res.err == nil {
			res.err = fmt.Errorf("error running sweep TUI: %w", err)
		}
		return res.report, res.err
	}
	res := <-done
	return res.report, res.err
}
