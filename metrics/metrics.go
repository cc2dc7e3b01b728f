package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry creates a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics are the radio and decoder counters
type AppMetrics struct {
	BytesReceived prometheus.Counter
	FramesTotal   *prometheus.CounterVec // labels: type
	FrameErrors   *prometheus.CounterVec // labels: reason
	Connected     prometheus.Gauge
	Sensors       prometheus.Gauge
	LastRSSI      *prometheus.GaugeVec // labels: source
}

// NewAppMetrics registers and returns the application metrics.
func NewAppMetrics(reg prometheus.Registerer) *AppMetrics {
	m := &AppMetrics{
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xbee_bytes_received_total",
			Help: "Total bytes read from the radio.",
		}),
		FramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xbee_frames_total",
			Help: "Decoded API frames by frame type.",
		}, []string{"type"}),
		FrameErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xbee_frame_errors_total",
			Help: "Frames that completed framing but were not delivered.",
		}, []string{"reason"}),
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "xbee_connected",
			Help: "1 while the radio connection is open.",
		}),
		Sensors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "xbee_sensors",
			Help: "Distinct source addresses heard since start.",
		}),
		LastRSSI: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "xbee_last_rssi",
			Help: "RSSI byte of the last sample report per source address.",
		}, []string{"source"}),
	}
	reg.MustRegister(m.BytesReceived, m.FramesTotal, m.FrameErrors, m.Connected, m.Sensors, m.LastRSSI)
	return m
}
