package sink

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/russelltsherman/node-tweetawatt/metrics"
	"github.com/russelltsherman/node-tweetawatt/packet"
	"github.com/russelltsherman/node-tweetawatt/xbee"
)

// Metrics counts emissions on the application metrics.
type Metrics struct {
	m *metrics.AppMetrics
}

func NewMetrics(m *metrics.AppMetrics) *Metrics {
	return &Metrics{m: m}
}

func (s *Metrics) Emit(event string, v any) {
	switch v := v.(type) {
	case packet.Frame:
		s.m.FramesTotal.WithLabelValues(frameTypeLabel(v.FrameType())).Inc()
		if a, ok := v.(*packet.AnalogSample); ok {
			s.m.LastRSSI.WithLabelValues(strconv.Itoa(int(a.Source))).Set(float64(a.RSSI))
		}
	case error:
		s.m.FrameErrors.WithLabelValues(errorReason(v)).Inc()
	}
}

func frameTypeLabel(t byte) string {
	return fmt.Sprintf("0x%02X", t)
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, xbee.ErrChecksumMismatch):
		return "checksum"
	case errors.Is(err, xbee.ErrTruncatedPayload):
		return "truncated"
	case errors.Is(err, xbee.ErrLengthMismatch):
		return "length"
	}
	return "other"
}
