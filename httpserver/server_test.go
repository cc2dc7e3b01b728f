package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/russelltsherman/node-tweetawatt/metrics"
	"github.com/russelltsherman/node-tweetawatt/packet"
	"github.com/russelltsherman/node-tweetawatt/sink"
	"github.com/russelltsherman/node-tweetawatt/xbee"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	h.ServeHTTP(w, req)
	return w
}

func newLatest() *sink.Latest {
	l := sink.NewLatest(nil)
	fr, err := xbee.Decode([]byte{0x83, 0x00, 0x1A, 0x20, 0x00, 0x01, 0x02, 0x00, 0x01, 0x23})
	if err != nil {
		panic(err)
	}
	l.Emit(xbee.EventData, fr)
	return l
}

func TestHealth(t *testing.T) {
	ready := false
	r := Router("", nil, newLatest(), func() bool { return ready })

	assert.Equal(t, http.StatusOK, get(t, r, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, r, "/readyz").Code)
	ready = true
	assert.Equal(t, http.StatusOK, get(t, r, "/readyz").Code)
	assert.Equal(t, http.StatusNotFound, get(t, r, "/metrics").Code)
}

func TestMetricsRoute(t *testing.T) {
	reg := metrics.NewRegistry()
	m := metrics.NewAppMetrics(reg)
	m.BytesReceived.Add(14)

	r := Router("/prom", metrics.Handler(reg), newLatest(), nil)
	w := get(t, r, "/prom")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "xbee_bytes_received_total 14")
}

func TestSensors(t *testing.T) {
	r := Router("", nil, newLatest(), nil)

	w := get(t, r, "/api/sensors")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Sensors []struct {
			Source  uint16 `json:"source"`
			Reports uint64 `json:"reports"`
			Last    struct {
				RSSI    int      `json:"rssi"`
				Samples [][]*int `json:"analog_samples"`
				Enabled []int    `json:"enabled_channels"`
			} `json:"last"`
		} `json:"sensors"`
		Errors uint64 `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Sensors, 1)
	s := body.Sensors[0]
	assert.Equal(t, uint16(26), s.Source)
	assert.Equal(t, uint64(1), s.Reports)
	assert.Equal(t, 32, s.Last.RSSI)
	assert.Equal(t, []int{0}, s.Last.Enabled)
	require.Len(t, s.Last.Samples, 1)
	require.Len(t, s.Last.Samples[0], packet.MaxAnalogChannels)
	assert.Equal(t, 291, *s.Last.Samples[0][0])
	assert.Nil(t, s.Last.Samples[0][5])
}

func TestSensorByAddress(t *testing.T) {
	r := Router("", nil, newLatest(), nil)

	for _, path := range []string{"/api/sensors/26", "/api/sensors/0x1A", "/api/sensors/0x001a"} {
		w := get(t, r, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	assert.Equal(t, http.StatusNotFound, get(t, r, "/api/sensors/27").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, r, "/api/sensors/kitchen").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, r, "/api/sensors/70000").Code)
}
