package sweep_tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.KeyMap.Quit):
			m.Stopping = true
			if m.hardStop != nil {
				m.hardStop()
			}
			if m.Done {
				return m, tea.Quit
			}
		case key.Matches(msg, m.KeyMap.Stop):
			m.Stopping = true
			if m.interrupt != nil {
				m.interrupt()
			}
			if m.Done {
				return m, tea.Quit
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width-20, 10), 60)
		return m, nil

	case PointStartedMsg:
		m.Current = &msg
		return m, nil

	case PointFinishedMsg:
		m.Current = nil
		m.Finished++
		m.Counts[msg.Result.Status]++
		m.Recent = append(m.Recent, msg.Result)
		if len(m.Recent) > maxRecent {
			m.Recent = m.Recent[len(m.Recent)-maxRecent:]
		}
		return m, nil

	case SweepDoneMsg:
		m.Done = true
		m.Current = nil
		m.Err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}
