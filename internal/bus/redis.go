package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisBus is a Redis-backed implementation of Bus.
type RedisBus struct {
	client *redis.Client
}

// NewRedisBus connects to Redis and verifies the connection with a Ping,
// matching the teacher-pack's RedisCache connection-verification idiom.
func NewRedisBus(cfg RedisConfig) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("bus: redis connection failed: %w", err)
	}

	log.WithField("addr", cfg.Addr).Info("connected to redis bus")

	return &RedisBus{client: client}, nil
}

// NewRedisBusFromClient wraps an already-constructed client, used by tests
// to point the bus at a miniredis instance.
func NewRedisBusFromClient(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

func (b *RedisBus) Set(ctx context.Context, key string, value []byte) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("bus: SET %s failed: %w", key, err)
	}
	return nil
}

func (b *RedisBus) Publish(ctx context.Context, channel string, value []byte) error {
	if err := b.client.Publish(ctx, channel, value).Err(); err != nil {
		return fmt.Errorf("bus: PUBLISH %s failed: %w", channel, err)
	}
	return nil
}

func (b *RedisBus) RPush(ctx context.Context, key string, value []byte) error {
	if err := b.client.RPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("bus: RPUSH %s failed: %w", key, err)
	}
	return nil
}

func (b *RedisBus) LPush(ctx context.Context, key string, value []byte) error {
	if err := b.client.LPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("bus: LPUSH %s failed: %w", key, err)
	}
	return nil
}

func (b *RedisBus) LRange(ctx context.Context, key string) ([][]byte, error) {
	vals, err := b.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("bus: LRANGE %s failed: %w", key, err)
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

func (b *RedisBus) Del(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("bus: DEL %s failed: %w", key, err)
	}
	return nil
}

// Subscribe subscribes to channel and forwards message payloads onto the
// returned channel until ctx is canceled. The subscription is torn down
// and the channel closed when the caller's context ends.
func (b *RedisBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	pubsub := b.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("bus: SUBSCRIBE %s failed: %w", channel, err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer pubsub.Close()
		incoming := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-incoming:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}
