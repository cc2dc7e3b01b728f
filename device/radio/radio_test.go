package radio

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/russelltsherman/node-tweetawatt/config"
	"github.com/russelltsherman/node-tweetawatt/metrics"
	"github.com/russelltsherman/node-tweetawatt/packet"
	"github.com/russelltsherman/node-tweetawatt/xbee"
)

var frame = []byte{0x7E, 0x00, 0x0A, 0x83, 0x00, 0x01, 0x20, 0x00, 0x01, 0x02, 0x00, 0x01, 0x23, 0x00}

// chunkConn returns its chunks one Read at a time, then err.
type chunkConn struct {
	chunks [][]byte
	err    error
	closed bool
}

func (c *chunkConn) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, c.err
	}
	n := copy(p, c.chunks[0])
	c.chunks[0] = c.chunks[0][n:]
	if len(c.chunks[0]) == 0 {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func (c *chunkConn) Write(p []byte) (int, error) { return len(p), nil }
func (c *chunkConn) Close() error                { c.closed = true; return nil }

type collector struct {
	mu     sync.Mutex
	events []string
	frames []packet.Frame
}

func (c *collector) Emit(event string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	if f, ok := v.(packet.Frame); ok {
		c.frames = append(c.frames, f)
	}
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func TestClient_ReadsUntilEOF(t *testing.T) {
	m := metrics.NewAppMetrics(prometheus.NewRegistry())
	conn := &chunkConn{
		chunks: [][]byte{frame[:2], frame[2:9], {}, frame[9:], frame},
		err:    io.EOF,
	}
	c := NewClient(conn, xbee.NewFramer(), zap.NewNop(), m)
	require.True(t, c.Connected())
	assert.NotEmpty(t, c.StreamID())

	col := &collector{}
	require.NoError(t, c.Start(context.Background(), col))

	require.Len(t, col.frames, 2)
	assert.Equal(t, uint16(1), col.frames[0].(*packet.AnalogSample).Source)
	assert.Equal(t, uint64(2), c.Stats().Frames)
	assert.False(t, c.Connected())
	assert.Equal(t, float64(2*len(frame)), testutil.ToFloat64(m.BytesReceived))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Connected))
}

func TestClient_ReadError(t *testing.T) {
	conn := &chunkConn{chunks: [][]byte{frame}, err: errors.New("device unplugged")}
	c := NewClient(conn, xbee.NewFramer(), zap.NewNop(), nil)

	col := &collector{}
	err := c.Start(context.Background(), col)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device unplugged")
	assert.Len(t, col.frames, 1)
}

func TestClient_CancelUnblocksRead(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()

	c := NewClient(local, xbee.NewFramer(), zap.NewNop(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	col := &collector{}
	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(ctx, col) }()

	_, err := remote.Write(frame)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return col.count() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	assert.False(t, c.Connected())
}

func TestConnect_TCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		// one byte per write, the way a slow serial bridge forwards
		for _, b := range frame {
			if _, err := conn.Write([]byte{b}); err != nil {
				return
			}
		}
	}()

	conf := config.Default().Interface
	conf.Device = ln.Addr().String()
	c, err := Connect(conf, xbee.NewFramer(), zap.NewNop(), nil)
	require.NoError(t, err)
	defer c.Close()

	col := &collector{}
	require.NoError(t, c.Start(context.Background(), col))
	require.Len(t, col.frames, 1)
	assert.Equal(t, []int{0}, col.frames[0].(*packet.AnalogSample).EnabledChannels)
}

func TestConnect_Errors(t *testing.T) {
	_, err := connectSerial("", 9600, time.Second)
	assert.Error(t, err)

	_, err = connectTCP("", time.Second)
	assert.Error(t, err)
}
