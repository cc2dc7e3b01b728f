package xbee

import (
	"slices"

	"github.com/russelltsherman/node-tweetawatt/packet"
)

// Emitter receives decoded frames. EventData carries a packet.Frame,
// EventError a *FrameError.
type Emitter interface {
	Emit(event string, v any)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(event string, v any)

func (f EmitterFunc) Emit(event string, v any) { f(event, v) }

// Stats counts what a Framer has seen so far.
type Stats struct {
	Frames           uint64 // delivered on EventData
	DecodeErrors     uint64
	ChecksumFailures uint64
	Resyncs          uint64 // start byte seen while a frame was still being collected
	Oversized        uint64 // frames dropped by WithMaxPayload
}

// Option configures a Framer.
type Option func(*Framer)

// WithChecksumVerification makes the framer compare the trailing byte of
// each frame with Checksum(payload). Frames that fail are reported on
// EventError instead of EventData. Off by default.
func WithChecksumVerification(on bool) Option {
	return func(f *Framer) { f.verify = on }
}

// WithMaxPayload drops any frame whose declared length exceeds n and waits
// for the next start byte. Zero means no limit.
func WithMaxPayload(n int) Option {
	return func(f *Framer) { f.maxPayload = n }
}

// WithDecoder replaces Decode.
func WithDecoder(fn func([]byte) (packet.Frame, error)) Option {
	return func(f *Framer) { f.decode = fn }
}

// Framer rebuilds API frames from a byte stream that may arrive in chunks of
// any size. One Framer serves one stream and must not be fed concurrently.
//
// There is no escaping: any 0x7E byte, including one inside a payload,
// starts a new frame and discards whatever was being collected.
type Framer struct {
	pos     int    // position relative to the last start byte
	synced  bool   // a start byte has been seen
	length  int    // declared payload length
	payload []byte // collected payload bytes

	verify     bool
	maxPayload int
	decode     func([]byte) (packet.Frame, error)

	stats Stats
}

// NewFramer creates a framer with private state.
func NewFramer(opts ...Option) *Framer {
	f := &Framer{decode: Decode}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Ingest consumes a chunk and emits every frame it completes.
func (f *Framer) Ingest(e Emitter, chunk []byte) {
	for _, b := range chunk {
		f.pos++

		if b == StartByte {
			if f.synced && f.length > 0 && len(f.payload) < f.length {
				f.stats.Resyncs++
			}
			f.pos = 0
			f.synced = true
			f.length = 0
			f.payload = nil
		}
		if !f.synced {
			continue
		}

		switch f.pos {
		case 1:
			f.length += int(b) << 8
		case 2:
			f.length += int(b)
			if f.maxPayload > 0 && f.length > f.maxPayload {
				f.stats.Oversized++
				f.synced = false
				continue
			}
		}
		if f.length == 0 {
			continue
		}

		if f.pos > 2 && len(f.payload) < f.length {
			f.payload = append(f.payload, b)
		}

		// The byte after the payload is the checksum. The frame is complete
		// once it has arrived; anything past it is ignored.
		if len(f.payload) == f.length && f.pos == f.length+3 {
			f.complete(e, b)
		}
	}
}

func (f *Framer) complete(e Emitter, checksum byte) {
	if f.verify && !VerifyChecksum(f.payload, checksum) {
		f.stats.ChecksumFailures++
		e.Emit(EventError, &FrameError{Payload: slices.Clone(f.payload), Err: ErrChecksumMismatch})
		return
	}
	fr, err := f.decode(f.payload)
	if err != nil {
		f.stats.DecodeErrors++
		e.Emit(EventError, &FrameError{Payload: slices.Clone(f.payload), Err: err})
		return
	}
	f.stats.Frames++
	e.Emit(EventData, fr)
}

// Stats returns a copy of the framer's counters.
func (f *Framer) Stats() Stats {
	return f.stats
}
