package relay

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis publishes events on a redis pub/sub channel so that every process
// subscribed to the same channel animates the same taps.
type Redis struct {
	client  *redis.Client
	channel string
	source  string
	logger  *log.Logger
}

// RedisOptions locates the server and names the channel.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Channel  string
	// Source is stamped on published events.
	Source string
}

// ChannelName is the default channel of a grid.
func ChannelName(grid string) string {
	return "honeycomb:" + grid + ":events"
}

// NewRedis connects to redis and checks the connection with a PING.
func NewRedis(ctx context.Context, opts RedisOptions, logger *log.Logger) (*Redis, error) {
	if logger == nil {
		logger = log.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis relay at %s: %w", opts.Addr, err)
	}

	return &Redis{
		client:  client,
		channel: opts.Channel,
		source:  opts.Source,
		logger:  logger,
	}, nil
}

func (r *Redis) Publish(ctx context.Context, e Event) error {
	if e.Source == "" {
		e.Source = r.source
	}
	payload, err := Encode(e)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, payload).Err()
}

// Subscribe waits for the subscription to be confirmed before returning, so that
// events published after Subscribe returns are not missed.
func (r *Redis) Subscribe(ctx context.Context) (<-chan Event, error) {
	sub := r.client.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	events := make(chan Event, subscriberBuffer)
	go func() {
		defer close(events)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				e, err := Decode([]byte(msg.Payload))
				if err != nil {
					r.logger.Println("relay: dropping message:", err)
					continue
				}
				select {
				case events <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}

// Close closes the client; open subscriptions end with it.
func (r *Redis) Close() error {
	return r.client.Close()
}
