package xbee

import (
	"errors"
	"fmt"

	"github.com/russelltsherman/node-tweetawatt/packet"
)

var (
	ErrTruncatedPayload = errors.New("truncated payload")
	ErrLengthMismatch   = errors.New("payload length mismatch")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// FrameError carries a payload that completed framing but could not be
// delivered as a decoded frame.
type FrameError struct {
	Payload []byte
	Err     error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame % X: %v", e.Payload, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Decode turns one frame payload (type byte first, no start byte, length or
// checksum) into a packet.Frame. Payloads of any type other than 0x83 come
// back unchanged as packet.Raw.
func Decode(p []byte) (packet.Frame, error) {
	if len(p) == 0 || p[0] != FrameTypeDataSampleRx {
		return packet.Raw(p), nil
	}
	if len(p) < HeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncatedPayload, HeaderSize, len(p))
	}

	s := &packet.AnalogSample{
		Type:                 p[0],
		Source:               be16(p[1], p[2]),
		RSSI:                 p[3],
		AddressBroadcast:     bitSet(p[4], 1),
		PANBroadcast:         bitSet(p[4], 2),
		TotalSamples:         int(p[5]),
		ChannelIndicatorHigh: p[6],
		ChannelIndicatorLow:  p[7],
		LocalChecksum:        sum(p[:HeaderSize]),
		Bytes:                p,
	}

	positions := channelPositions(s.ChannelIndicatorHigh, packet.MaxAnalogChannels)
	// rank maps a channel slot to its position within one sample set
	rank := make(map[int]int, len(positions))
	for c, on := range positions {
		if on {
			rank[c] = len(s.EnabledChannels)
			s.EnabledChannels = append(s.EnabledChannels, c)
		}
	}
	s.AnalogChannelCount = len(s.EnabledChannels)

	setWidth := s.AnalogChannelCount * sampleWidth
	need := HeaderSize + setWidth*s.TotalSamples
	if len(p) < need {
		return nil, fmt.Errorf("%w: %d sample sets of %d channels need %d bytes, have %d",
			ErrTruncatedPayload, s.TotalSamples, s.AnalogChannelCount, need, len(p))
	}
	// Extra bytes mean the mask or set count does not describe the sample
	// layout, so every offset would be wrong.
	if len(p) > need {
		return nil, fmt.Errorf("%w: %d sample sets of %d channels need %d bytes, have %d",
			ErrLengthMismatch, s.TotalSamples, s.AnalogChannelCount, need, len(p))
	}

	s.Samples = make([]packet.SampleSet, s.TotalSamples)
	for n := range s.TotalSamples {
		base := HeaderSize + setWidth*n
		for _, c := range s.EnabledChannels {
			off := base + rank[c]*sampleWidth
			s.Samples[n][c] = packet.ADC(be16(p[off], p[off+1]))
		}
	}
	return s, nil
}
