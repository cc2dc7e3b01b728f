package xbee

// XBee API mode constants
const (
	StartByte byte = 0x7E // Start of every API frame

	FrameTypeDataSampleRx byte = 0x83 // I/O data sample, 16-bit source address (series 1)

	// HeaderSize is the fixed part of a 0x83 payload ahead of the ADC data.
	// It assumes no digital channels are enabled.
	HeaderSize = 8

	sampleWidth = 2 // bytes per ADC reading
)

// Event names delivered to an Emitter.
const (
	EventData  = "data"
	EventError = "error"
)
