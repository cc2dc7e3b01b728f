package radio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/russelltsherman/node-tweetawatt/config"
	"github.com/russelltsherman/node-tweetawatt/metrics"
	"github.com/russelltsherman/node-tweetawatt/xbee"
)

// Client is an open byte stream from an XBee coordinator in API mode
type Client struct {
	conn    io.ReadWriteCloser // The underlying connection (TCP, Serial, etc.)
	framer  *xbee.Framer
	log     *zap.Logger
	metrics *metrics.AppMetrics
	stream  string
	bufSize int

	connected atomic.Bool
	closeOnce sync.Once
}

// Connect opens the radio described by conf. A device containing ':' is
// dialled over TCP, anything else is opened as a serial port.
func Connect(conf config.InterfaceConfig, framer *xbee.Framer, log *zap.Logger, m *metrics.AppMetrics) (*Client, error) {
	var (
		conn io.ReadWriteCloser
		err  error
	)
	if conf.IsTCP() {
		log.Info("connecting to radio over TCP", zap.String("addr", conf.Device))
		conn, err = connectTCP(conf.Device, conf.DialTimeout)
	} else {
		log.Info("opening radio serial port", zap.String("device", conf.Device), zap.Int("baud", conf.Baud))
		conn, err = connectSerial(conf.Device, conf.Baud, conf.ReadTimeout)
	}
	if err != nil {
		return nil, err
	}

	c := NewClient(conn, framer, log, m)
	c.bufSize = conf.ReadBuffer
	log.Info("radio connected", zap.String("stream", c.stream))
	return c, nil
}

// NewClient wraps an already open connection. m may be nil.
func NewClient(conn io.ReadWriteCloser, framer *xbee.Framer, log *zap.Logger, m *metrics.AppMetrics) *Client {
	c := &Client{
		conn:    conn,
		framer:  framer,
		metrics: m,
		stream:  uuid.NewString(),
		bufSize: 256,
	}
	c.log = log.With(zap.String("stream", c.stream))
	c.connected.Store(true)
	if m != nil {
		m.Connected.Set(1)
	}
	return c
}

// StreamID identifies this connection in logs and published messages.
func (c *Client) StreamID() string { return c.stream }

// Connected reports whether the read loop can still receive bytes.
func (c *Client) Connected() bool { return c.connected.Load() }

// Start runs the read loop, feeding every chunk to the framer, until ctx is
// cancelled or the connection ends. It returns nil on cancellation and on EOF.
func (c *Client) Start(ctx context.Context, e xbee.Emitter) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// unblock a Read that has no timeout
			c.Close()
		case <-done:
		}
	}()

	buf := make([]byte, c.bufSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			if c.metrics != nil {
				c.metrics.BytesReceived.Add(float64(n))
			}
			c.framer.Ingest(e, buf[:n])
		}
		if err != nil {
			c.markDown()
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				c.log.Info("radio stream ended")
				return nil
			}
			return fmt.Errorf("read radio: %w", err)
		}
		if ctx.Err() != nil {
			c.markDown()
			return nil
		}
	}
}

// Stats returns the framer counters for this stream. The framer is owned by
// the read loop, so only call this once Start has returned.
func (c *Client) Stats() xbee.Stats {
	return c.framer.Stats()
}

func (c *Client) markDown() {
	c.connected.Store(false)
	if c.metrics != nil {
		c.metrics.Connected.Set(0)
	}
}

// Close disconnects the client
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.markDown()
		if c.conn != nil {
			c.conn.Close()
		}
	})
}
