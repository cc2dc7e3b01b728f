package msgbar

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/russelltsherman/node-tweetawatt/packet"
	"github.com/russelltsherman/node-tweetawatt/sink"
)

const (
	barHeight = 7 // Total height of the component (including border)
)

// Model holds the event bar's state: dropped frames and frame types the
// decoder passes through untouched
type Model struct {
	width    int
	height   int
	limit    int
	messages []string // Newest first
}

// New creates a new event bar keeping at most limit lines of history
func New(limit int) Model {
	if limit < barHeight {
		limit = barHeight
	}
	return Model{
		width:    80,
		height:   barHeight,
		limit:    limit,
		messages: make([]string, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Format renders an event as a single line, or "" if it is not shown here
func Format(ev sink.Event) string {
	ts := ev.At.Format("15:04:05")
	switch {
	case ev.Err != nil:
		return fmt.Sprintf("%s error: %v", ts, ev.Err)
	case ev.Frame != nil:
		if raw, ok := ev.Frame.(packet.Raw); ok {
			return fmt.Sprintf("%s frame 0x%02X (%d bytes) not decoded", ts, raw.FrameType(), len(raw))
		}
	}
	return ""
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		// Height is fixed, but we store it for consistency
		m.height = barHeight

	case sink.Event:
		line := Format(msg)
		if line == "" {
			return m, nil
		}
		m.messages = append([]string{line}, m.messages...)
		if len(m.messages) > m.limit {
			m.messages = m.messages[:m.limit]
		}
	}
	return m, nil
}

func (m Model) View() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")). // Purple
		Width(m.width - 2).                     // -2 for border
		Height(m.height - 2).                   // -2 for border
		Padding(0, 1)

	var b strings.Builder

	// Available width for text
	contentWidth := m.width - 2 - 2 // -border, -padding
	if contentWidth < 0 {
		contentWidth = 0
	}

	numMessages := m.height - 2
	if numMessages < 0 {
		numMessages = 0
	}
	if numMessages > len(m.messages) {
		numMessages = len(m.messages)
	}

	// Oldest of the visible lines first, so new events appear at the bottom
	for i := numMessages - 1; i >= 0; i-- {
		msg := m.messages[i]
		if len(msg) > contentWidth {
			msg = msg[:contentWidth]
		}
		b.WriteString(msg)
		if i > 0 {
			b.WriteRune('\n')
		}
	}

	return style.Render(b.String())
}
