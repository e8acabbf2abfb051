package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// WatermillPublisher implements Publisher with a watermill publisher
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// Publish publishes an event as a JSON message
func (p *WatermillPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", event.Type)
	msg.SetContext(ctx)
	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close closes the underlying publisher
func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

// NewWatermillPublisher creates a publisher for the session topic
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher, topic: Topic}
}

// NewMemoryPubSub creates an in-process pub/sub; events without subscribers are dropped
func NewMemoryPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
}

// NewRedisPublisher creates a Redis streams publisher
func NewRedisPublisher(client redis.UniversalClient) (*WatermillPublisher, error) {
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{Client: client}, watermill.NewStdLogger(false, false))
	if err != nil {
		return nil, fmt.Errorf("failed to create redis publisher: %w", err)
	}
	return NewWatermillPublisher(publisher), nil
}
