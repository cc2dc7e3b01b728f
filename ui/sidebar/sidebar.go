package sidebar

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type entry struct {
	source uint16
	rssi   byte
	count  int
}

// Model holds the sidebar's state
type Model struct {
	width   int
	height  int
	sensors []entry // Most recently heard first
}

// New creates a new sidebar model
func New() Model {
	return Model{
		width:   20, // Default
		height:  24, // Default
		sensors: make([]entry, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// AddReport moves a source address to the top of the list
func (m *Model) AddReport(source uint16, rssi byte) {
	e := entry{source: source, rssi: rssi, count: 1}
	for i, s := range m.sensors {
		if s.source == source {
			e.count = s.count + 1
			m.sensors = append(m.sensors[:i], m.sensors[i+1:]...)
			break
		}
	}
	m.sensors = append([]entry{e}, m.sensors...)
	m.trim()
}

// Sources returns the listed addresses, newest first
func (m Model) Sources() []uint16 {
	out := make([]uint16, len(m.sensors))
	for i, s := range m.sensors {
		out[i] = s.source
	}
	return out
}

// trim drops entries that no longer fit: -2 for the borders, -1 for the header
func (m *Model) trim() {
	maxSensors := m.height - 3
	if maxSensors < 1 {
		maxSensors = 1
	}
	if len(m.sensors) > maxSensors {
		m.sensors = m.sensors[:maxSensors]
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.trim()
	}
	return m, nil
}

func (m Model) View() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(m.width - 2).   // -2 for border
		Height(m.height - 2). // -2 for border
		Padding(0, 1)

	header := lipgloss.NewStyle().
		Bold(true).
		Underline(true).
		Width(m.width - 2 - 2). // -2 border, -2 padding
		Render("Sensors")

	var b strings.Builder
	b.WriteString(header)

	// Inner height minus the header line
	contentHeight := (m.height - 2) - 1
	if contentHeight > 0 {
		b.WriteRune('\n')
		for i, s := range m.sensors {
			if i >= contentHeight {
				break
			}
			line := fmt.Sprintf("%04X -%ddBm", s.source, s.rssi)
			line = fmt.Sprintf("%.*s", max(m.width-2-2, 0), line)
			b.WriteString(line)
			if i < len(m.sensors)-1 && i < contentHeight-1 {
				b.WriteRune('\n')
			}
		}
	}

	return style.Render(b.String())
}
