package redis

import (
	"context"

	"github.com/tuition-hub/tuition-fee-hub/internal/infrastructure/messaging"
)

// PubSubClient adapts the Cache to the messaging.RedisClient interface so the
// Redis event bus can ride the same connection pool as the roster cache.
type PubSubClient struct {
	cache *Cache
}

// NewPubSubClient creates a PubSubClient on top of an existing Cache.
func NewPubSubClient(cache *Cache) *PubSubClient {
	return &PubSubClient{cache: cache}
}

// Publish publishes a message to a channel. Strings pass through verbatim;
// the bus hands over envelopes it has already serialized.
func (p *PubSubClient) Publish(ctx context.Context, channel string, message interface{}) error {
	if s, ok := message.(string); ok {
		return p.cache.client.Publish(ctx, channel, s).Err()
	}
	return p.cache.Publish(ctx, channel, message)
}

// Subscribe subscribes to channels and converts messages to the bus format.
// The returned channel closes when the context is cancelled.
func (p *PubSubClient) Subscribe(ctx context.Context, channels ...string) (<-chan messaging.RedisMessage, error) {
	pubsub := p.cache.Subscribe(ctx, channels...)

	// Wait for the subscription to be confirmed before returning.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan messaging.RedisMessage)
	in := pubsub.Channel()

	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				out <- messaging.RedisMessage{
					Channel: msg.Channel,
					Payload: msg.Payload,
				}
			}
		}
	}()

	return out, nil
}

// Close is a no-op: the underlying Cache owns the connection.
func (p *PubSubClient) Close() error {
	return nil
}
