package sink

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/russelltsherman/node-tweetawatt/config"
	"github.com/russelltsherman/node-tweetawatt/packet"
	"github.com/russelltsherman/node-tweetawatt/xbee"
)

// Publisher is the part of *redis.Client the Redis sink uses.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Envelope is the JSON message published for each emission.
type Envelope struct {
	Stream string    `json:"stream"`
	Event  string    `json:"event"`
	At     time.Time `json:"at"`
	Frame  any       `json:"frame,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// Redis publishes emissions to <prefix>:<event> channels.
type Redis struct {
	pub     Publisher
	prefix  string
	stream  string
	timeout time.Duration
	log     *zap.Logger
}

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, errors.New("redis is not enabled")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// NewRedis creates a publisher sink. stream identifies the radio connection
// in every envelope.
func NewRedis(pub Publisher, cfg config.RedisConfig, stream string, log *zap.Logger) *Redis {
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Redis{pub: pub, prefix: cfg.ChannelPrefix, stream: stream, timeout: timeout, log: log}
}

// Channel returns the channel an event is published on.
func (r *Redis) Channel(event string) string {
	if r.prefix == "" {
		return event
	}
	return r.prefix + ":" + event
}

func (r *Redis) Emit(event string, v any) {
	env := Envelope{Stream: r.stream, Event: event, At: time.Now().UTC()}
	switch v := v.(type) {
	case *xbee.FrameError:
		env.Error = v.Err.Error()
		env.Frame = packet.Raw(v.Payload)
	case error:
		env.Error = v.Error()
	default:
		env.Frame = v
	}

	msg, err := json.Marshal(env)
	if err != nil {
		r.log.Error("encode envelope", zap.String("event", event), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.pub.Publish(ctx, r.Channel(event), msg).Err(); err != nil {
		r.log.Warn("redis publish failed", zap.String("channel", r.Channel(event)), zap.Error(err))
	}
}
