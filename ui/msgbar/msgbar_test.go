package msgbar

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/russelltsherman/node-tweetawatt/packet"
	"github.com/russelltsherman/node-tweetawatt/sink"
	"github.com/russelltsherman/node-tweetawatt/xbee"
)

func TestFormat(t *testing.T) {
	at := time.Date(2024, 1, 2, 13, 14, 15, 0, time.UTC)

	assert.Equal(t, "13:14:15 frame 0x89 (3 bytes) not decoded",
		Format(sink.Event{Name: xbee.EventData, Frame: packet.Raw{0x89, 0x01, 0x00}, At: at}))
	assert.Equal(t, "13:14:15 error: truncated payload: short",
		Format(sink.Event{Name: xbee.EventError, Err: fmt.Errorf("%w: short", xbee.ErrTruncatedPayload), At: at}))
	assert.Empty(t, Format(sink.Event{Name: xbee.EventData, Frame: &packet.AnalogSample{}, At: at}))
}

func TestUpdate_KeepsLimit(t *testing.T) {
	m := New(barHeight)
	for i := 0; i < barHeight+3; i++ {
		m, _ = m.Update(sink.Event{Name: xbee.EventData, Frame: packet.Raw{byte(i)}, At: time.Now()})
	}
	assert.Len(t, m.messages, barHeight)
	assert.Contains(t, m.messages[0], fmt.Sprintf("0x%02X", barHeight+2))

	// decoded samples are not listed
	m, _ = m.Update(sink.Event{Name: xbee.EventData, Frame: &packet.AnalogSample{}, At: time.Now()})
	assert.Contains(t, m.messages[0], fmt.Sprintf("0x%02X", barHeight+2))
}
