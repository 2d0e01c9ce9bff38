package display

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SpinnerShouldShow returns true if the spinner should be displayed.
// The spinner is hidden for JSON output and non-TTY (piped) output.
func SpinnerShouldShow(json, nonTTY bool) bool {
	return !json && !nonTTY
}

// SpinnerRun shows a spinner with the given label while fn executes.
// It blocks until fn returns; fn's error is returned unchanged.
func SpinnerRun(label string, fn func() error) error {
	m := newSpinnerModel(label)
	p := tea.NewProgram(m)

	var fnErr error
	done := make(chan struct{})
	go func() {
		fnErr = fn()
		p.Send(spinnerDoneMsg{})
		close(done)
	}()

	_, err := p.Run()
	<-done
	if err != nil {
		return fmt.Errorf("running spinner: %w", err)
	}
	return fnErr
}

type spinnerDoneMsg struct{}

type spinnerModel struct {
	spinner  spinner.Model
	label    string
	quitting bool
}

func newSpinnerModel(label string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return spinnerModel{spinner: s, label: label}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m spinnerModel) View() string {
	// When done, return empty — the spinner is transient progress UI
	if m.quitting {
		return ""
	}
	return m.spinner.View() + " " + m.label
}
