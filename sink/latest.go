package sink

import (
	"sort"
	"sync"
	"time"

	"github.com/russelltsherman/node-tweetawatt/metrics"
	"github.com/russelltsherman/node-tweetawatt/packet"
)

// Sensor is the most recent report from one source address.
type Sensor struct {
	Source  uint16               `json:"source"`
	Last    *packet.AnalogSample `json:"last"`
	Seen    time.Time            `json:"seen"`
	Reports uint64               `json:"reports"`
}

// Latest keeps the newest sample report per source address. It is fed by the
// radio loop and read by the HTTP API, so access is locked.
type Latest struct {
	mu      sync.RWMutex
	sensors map[uint16]*Sensor
	errors  uint64
	now     func() time.Time
	gauge   *metrics.AppMetrics
}

// NewLatest creates an empty store. m may be nil.
func NewLatest(m *metrics.AppMetrics) *Latest {
	return &Latest{sensors: make(map[uint16]*Sensor), now: time.Now, gauge: m}
}

func (l *Latest) Emit(event string, v any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch v := v.(type) {
	case *packet.AnalogSample:
		s, ok := l.sensors[v.Source]
		if !ok {
			s = &Sensor{Source: v.Source}
			l.sensors[v.Source] = s
			if l.gauge != nil {
				l.gauge.Sensors.Set(float64(len(l.sensors)))
			}
		}
		s.Last = v
		s.Seen = l.now()
		s.Reports++
	case error:
		l.errors++
	}
}

// Get returns a copy of one sensor's entry.
func (l *Latest) Get(source uint16) (Sensor, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.sensors[source]
	if !ok {
		return Sensor{}, false
	}
	return *s, true
}

// Snapshot returns every sensor, ordered by address.
func (l *Latest) Snapshot() []Sensor {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Sensor, 0, len(l.sensors))
	for _, s := range l.sensors {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Errors returns how many error emissions have been seen.
func (l *Latest) Errors() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.errors
}
