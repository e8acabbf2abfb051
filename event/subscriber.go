package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Listen delivers session events to fn until ctx is done; undecodable messages are acked and skipped
func Listen(ctx context.Context, subscriber message.Subscriber, fn func(event *Event)) error {
	messages, err := subscriber.Subscribe(ctx, Topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %v: %w", Topic, err)
	}
	go func() {
		for msg := range messages {
			anEvent := &Event{}
			if err := json.Unmarshal(msg.Payload, anEvent); err != nil {
				log.Printf("skipping malformed event %v: %v", msg.UUID, err)
				msg.Ack()
				continue
			}
			fn(anEvent)
			msg.Ack()
		}
	}()
	return nil
}
