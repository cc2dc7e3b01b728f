package packet

import (
	"encoding/json"
	"strconv"
)

// MaxAnalogChannels is the number of ADC inputs on an XBee series 1 module.
const MaxAnalogChannels = 6

// Frame is anything the decoder can hand to a sink.
type Frame interface {
	FrameType() byte
}

// Reading is one slot of a sample set. A zero Reading is the "no data"
// marker for a channel that was not enabled.
type Reading struct {
	Value uint16
	Valid bool
}

// NoData marks a disabled channel slot.
var NoData = Reading{}

// ADC returns a valid reading.
func ADC(v uint16) Reading {
	return Reading{Value: v, Valid: true}
}

// String renders the value, or "--" for no data.
func (r Reading) String() string {
	if !r.Valid {
		return "--"
	}
	return strconv.Itoa(int(r.Value))
}

// MarshalJSON encodes no-data slots as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// SampleSet is one synchronized read across every channel slot.
type SampleSet [MaxAnalogChannels]Reading

// AnalogSample is a decoded I/O data sample (frame type 0x83) report.
type AnalogSample struct {
	Type byte `json:"frame_type"`

	Source           uint16 `json:"source_address_16"`
	RSSI             byte   `json:"rssi"`
	AddressBroadcast bool   `json:"address_broadcast"`
	PANBroadcast     bool   `json:"pan_broadcast"`

	TotalSamples         int  `json:"total_samples"`
	ChannelIndicatorHigh byte `json:"channel_indicator_high"`
	ChannelIndicatorLow  byte `json:"channel_indicator_low"`

	EnabledChannels    []int       `json:"enabled_channels"`
	AnalogChannelCount int         `json:"analog_channel_count"`
	Samples            []SampleSet `json:"analog_samples"`

	// LocalChecksum is the sum of the eight header bytes. It is not the
	// frame's trailing checksum and nothing compares the two.
	LocalChecksum int `json:"local_checksum"`

	Bytes []byte `json:"-"`
}

func (s *AnalogSample) FrameType() byte { return s.Type }

// Channel returns the readings of channel c across every sample set.
func (s *AnalogSample) Channel(c int) []Reading {
	if c < 0 || c >= MaxAnalogChannels {
		return nil
	}
	out := make([]Reading, 0, len(s.Samples))
	for _, set := range s.Samples {
		out = append(out, set[c])
	}
	return out
}

// Raw is an undecoded payload for any frame type other than 0x83.
type Raw []byte

func (r Raw) FrameType() byte {
	if len(r) == 0 {
		return 0
	}
	return r[0]
}

// MarshalJSON encodes the payload as a list of byte values rather than base64.
func (r Raw) MarshalJSON() ([]byte, error) {
	vals := make([]int, len(r))
	for i, b := range r {
		vals[i] = int(b)
	}
	return json.Marshal(vals)
}
