package sink

import (
	"go.uber.org/zap"

	"github.com/russelltsherman/node-tweetawatt/packet"
	"github.com/russelltsherman/node-tweetawatt/xbee"
)

// Log writes each emission to a zap logger.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Emit(event string, v any) {
	switch v := v.(type) {
	case *packet.AnalogSample:
		l.log.Debug("sample report",
			zap.Uint16("source", v.Source),
			zap.Uint8("rssi", v.RSSI),
			zap.Ints("channels", v.EnabledChannels),
			zap.Int("sets", v.TotalSamples),
		)
	case packet.Raw:
		l.log.Debug("unhandled frame type",
			zap.String("type", frameTypeLabel(v.FrameType())),
			zap.Binary("payload", v),
		)
	case *xbee.FrameError:
		l.log.Warn("frame dropped", zap.Error(v.Err), zap.Binary("payload", v.Payload))
	case error:
		l.log.Warn("frame dropped", zap.Error(v))
	default:
		l.log.Debug("emission", zap.String("event", event), zap.Any("value", v))
	}
}
