package footer

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model holds the footer's state
type Model struct {
	width      int
	frames     int
	errors     int
	lastSource string
}

// New creates a new footer model
func New() Model {
	return Model{width: 80, lastSource: "-"}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// CountFrame records a delivered frame and, if non-empty, its source
func (m *Model) CountFrame(source string) {
	m.frames++
	if source != "" {
		m.lastSource = source
	}
}

// CountError records a dropped frame
func (m *Model) CountError() {
	m.errors++
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m Model) View() string {
	status := fmt.Sprintf(" frames: %d  errors: %d  last: %s", m.frames, m.errors, m.lastSource)
	help := "q: quit "

	pad := m.width - lipgloss.Width(status) - lipgloss.Width(help)
	if pad < 1 {
		pad = 1
	}
	line := status + fmt.Sprintf("%*s", pad, "") + help

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Background(lipgloss.Color("236")).
		Width(m.width).
		MaxWidth(m.width)

	return style.Render(line)
}
