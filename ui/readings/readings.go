package readings

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/russelltsherman/node-tweetawatt/packet"
)

const colWidth = 6

type row struct {
	sample *packet.AnalogSample
	seen   time.Time
}

// Model holds the readings panel state: the last report per sensor
type Model struct {
	width  int
	height int
	rows   map[uint16]row
}

// New creates a new readings panel
func New() Model {
	return Model{
		width:  80,
		height: 23,
		rows:   make(map[uint16]row),
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Mean averages one channel over every sample set in a report. ok is false
// when the channel carried no data.
func Mean(s *packet.AnalogSample, channel int) (mean float64, ok bool) {
	var total, n int
	for _, r := range s.Channel(channel) {
		if r.Valid {
			total += int(r.Value)
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(total) / float64(n), true
}

// Record stores a report, replacing the previous one from the same source
func (m *Model) Record(s *packet.AnalogSample, at time.Time) {
	m.rows[s.Source] = row{sample: s, seen: at}
}

// Sensors reports how many distinct sources have been recorded
func (m Model) Sensors() int {
	return len(m.rows)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

// Lines renders the table body, one line per sensor ordered by address
func (m Model) Lines() []string {
	sources := make([]int, 0, len(m.rows))
	for src := range m.rows {
		sources = append(sources, int(src))
	}
	sort.Ints(sources)

	var head strings.Builder
	head.WriteString(fmt.Sprintf("%-6s %-7s %-4s", "ADDR", "RSSI", "SETS"))
	for c := 0; c < packet.MaxAnalogChannels; c++ {
		head.WriteString(fmt.Sprintf(" %*s", colWidth, fmt.Sprintf("A%d", c)))
	}
	head.WriteString("  SEEN")

	lines := []string{head.String()}
	for _, src := range sources {
		r := m.rows[uint16(src)]
		s := r.sample

		var b strings.Builder
		b.WriteString(fmt.Sprintf("%04X   %-7s %-4d", s.Source, fmt.Sprintf("-%ddBm", s.RSSI), s.TotalSamples))
		for c := 0; c < packet.MaxAnalogChannels; c++ {
			cell := "--"
			if v, ok := Mean(s, c); ok {
				cell = fmt.Sprintf("%.0f", v)
			}
			b.WriteString(fmt.Sprintf(" %*s", colWidth, cell))
		}
		b.WriteString("  " + r.seen.Format("15:04:05"))
		lines = append(lines, b.String())
	}
	return lines
}

func (m Model) View() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(m.width - 2).
		Height(m.height - 2).
		Padding(0, 1)

	innerWidth := max(m.width-2-2, 0)
	innerHeight := max(m.height-2, 0)

	lines := m.Lines()
	if len(m.rows) == 0 {
		lines = append(lines, "waiting for sample reports...")
	}
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}
	for i, l := range lines {
		if len(l) > innerWidth {
			lines[i] = l[:innerWidth]
		}
	}
	if len(lines) > 0 {
		lines[0] = lipgloss.NewStyle().Bold(true).Render(lines[0])
	}

	return style.Render(strings.Join(lines, "\n"))
}
