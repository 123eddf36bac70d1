// Package sweep_tui renders a live view of a running sweep.
package sweep_tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-sweep/pkg/manifest"
	"github.com/mattsolo1/grove-sweep/pkg/params"
	"github.com/mattsolo1/grove-sweep/pkg/sweep"
)

// maxRecent is how many finished points the view keeps on screen.
const maxRecent = 8

// PointStartedMsg is sent before a point runs.
type PointStartedMsg struct {
	Index int
	Point params.Point
}

// PointFinishedMsg is sent after a point ran.
type PointFinishedMsg struct {
	Result sweep.Result
}

// SweepDoneMsg is sent once the runner returned.
type SweepDoneMsg struct {
	Err error
}

// Model is the state of the sweep view.
type Model struct {
	Title   string
	Total   int
	KeyMap  KeyMap
	Started time.Time

	Current  *PointStartedMsg
	Recent   []sweep.Result
	Counts   map[manifest.Status]int
	Finished int
	Err      error
	Done     bool
	Stopping bool

	// now is replaced in tests.
	now func() time.Time

	interrupt func()
	hardStop  context.CancelFunc
	spinner   spinner.Model
	bar       progress.Model
	width     int
}

// New builds the view for a sweep of total points. stop cancels the sweep
// between points; kill also cancels the running simulation.
func New(title string, total int, stop func(), kill context.CancelFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = runningStyle

	return Model{
		Title:     title,
		Total:     total,
		KeyMap:    NewKeyMap(),
		Started:   time.Now(),
		Counts:    make(map[manifest.Status]int),
		now:       time.Now,
		interrupt: stop,
		hardStop:  kill,
		spinner:   s,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		width:     80,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Percent is the share of points finished so far.
func (m Model) Percent() float64 {
	if m.Total == 0 {
		return 1
	}
	return float64(m.Finished) / float64(m.Total)
}

// Remaining estimates the time left from the average point duration.
func (m Model) Remaining() time.Duration {
	if m.Finished == 0 || m.Finished >= m.Total {
		return 0
	}
	per := m.now().Sub(m.Started) / time.Duration(m.Finished)
	return per * time.Duration(m.Total-m.Finished)
}
