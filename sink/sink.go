// Package sink holds the consumers of decoded frames. Every type here
// satisfies xbee.Emitter.
package sink

import (
	"time"

	"github.com/russelltsherman/node-tweetawatt/packet"
	"github.com/russelltsherman/node-tweetawatt/xbee"
)

// Event is one emission in a form the UI can switch on.
type Event struct {
	Name  string
	Frame packet.Frame // set for xbee.EventData
	Err   error        // set for xbee.EventError
	At    time.Time
}

// NewEvent converts an emission into an Event.
func NewEvent(name string, v any) Event {
	ev := Event{Name: name, At: time.Now()}
	switch v := v.(type) {
	case packet.Frame:
		ev.Frame = v
	case error:
		ev.Err = v
	}
	return ev
}

// Multi fans one emission out to several emitters, in order.
type Multi []xbee.Emitter

func (m Multi) Emit(event string, v any) {
	for _, e := range m {
		e.Emit(event, v)
	}
}

// Chan forwards every emission to a channel. Sends block, so whoever reads
// the channel paces the radio loop, until done is closed; after that
// emissions are dropped.
type Chan struct {
	ch   chan<- Event
	done <-chan struct{}
}

// NewChan creates a channel sink. done may be nil.
func NewChan(ch chan<- Event, done <-chan struct{}) *Chan {
	return &Chan{ch: ch, done: done}
}

func (c *Chan) Emit(event string, v any) {
	select {
	case c.ch <- NewEvent(event, v):
	case <-c.done:
	}
}
