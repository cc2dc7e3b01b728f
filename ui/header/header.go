package header

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model holds the header's state
type Model struct {
	width   int
	device  string
	sensors int
	down    bool // radio stream has ended
}

// New creates a new header model for the given radio device
func New(device string) Model {
	return Model{
		width:  80, // Default width, will be updated
		device: device,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// SetSensors updates the number of distinct sensors heard so far
func (m *Model) SetSensors(n int) {
	m.sensors = n
}

// SetDown marks the radio link as gone
func (m *Model) SetDown() {
	m.down = true
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m Model) View() string {
	title := "TweetaWatt"
	if m.device != "" {
		title += " - " + m.device
	}

	link := "up"
	if m.down {
		link = "down"
	}
	status := fmt.Sprintf("%d sensors | link %s ", m.sensors, link)

	base := lipgloss.NewStyle().
		Bold(true).
		Background(lipgloss.Color("63")). // matches panel borders
		Foreground(lipgloss.Color("255"))

	left := base.Width(max(m.width-lipgloss.Width(status), 0)).Align(lipgloss.Center).Render(title)
	right := base.Render(status)
	if m.down {
		right = base.Foreground(lipgloss.Color("9")).Render(status)
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(left + right)
}
