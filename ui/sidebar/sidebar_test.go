package sidebar

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestAddReport_MovesToTop(t *testing.T) {
	m := New()
	m.AddReport(1, 40)
	m.AddReport(2, 41)
	m.AddReport(1, 42)

	assert.Equal(t, []uint16{1, 2}, m.Sources())
	assert.Equal(t, 2, m.sensors[0].count)
	assert.Equal(t, byte(42), m.sensors[0].rssi)
}

func TestResize_Trims(t *testing.T) {
	m := New()
	for i := range 10 {
		m.AddReport(uint16(i), 30)
	}
	m, _ = m.Update(tea.WindowSizeMsg{Width: 20, Height: 6})

	assert.Equal(t, []uint16{9, 8, 7}, m.Sources())
	assert.Contains(t, m.View(), "0009")
}
