// Package bus fans turn events out to observers.
//
// The agent publishes every event of a turn to the topic of its session;
// websocket clients subscribe to the sessions they display. Delivery is best
// effort: events published while nobody listens are dropped, and a slow
// subscriber loses events rather than stalling the turn.
package bus

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"

	"github.com/jarvis-assistant/jarvis/internal/turn"
)

const (
	topicPrefix = "turn."
	// subscriberBuffer is how many frames a subscriber may lag behind.
	subscriberBuffer = 64
)

// EventBus is an in-process pub/sub for turn events keyed by session id.
type EventBus struct {
	pubsub *gochannel.GoChannel
}

func NewEventBus() *EventBus {
	return &EventBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            subscriberBuffer,
			BlockPublishUntilSubscriberAck: true,
		}, NewSlogAdapter(slog.Default())),
	}
}

// Topic returns the topic carrying events of session id.
func Topic(id string) string { return topicPrefix + id }

// Publish sends ev to the subscribers of session id.
func (b *EventBus) Publish(id string, ev *turn.Event) error {
	payload, err := json.Marshal(NewFrame(id, ev))
	if err != nil {
		return errors.Wrap(err, "marshal frame")
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(Topic(id), msg); err != nil {
		return errors.Wrapf(err, "publish to %s", Topic(id))
	}
	return nil
}

// Subscribe streams frames for session id until ctx is done, then closes
// the returned channel.
func (b *EventBus) Subscribe(ctx context.Context, id string) (<-chan Frame, error) {
	msgs, err := b.pubsub.Subscribe(ctx, Topic(id))
	if err != nil {
		return nil, errors.Wrapf(err, "subscribe to %s", Topic(id))
	}

	out := make(chan Frame, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range msgs {
			var f Frame
			if err := json.Unmarshal(msg.Payload, &f); err != nil {
				slog.Warn("bus: dropping undecodable frame", "topic", Topic(id), "err", err)
				msg.Ack()
				continue
			}
			select {
			case out <- f:
			default:
				slog.Warn("bus: subscriber too slow, dropping frame", "session", id)
			}
			msg.Ack()
		}
	}()
	return out, nil
}

// Close shuts the bus down and closes every subscription.
func (b *EventBus) Close() error {
	return b.pubsub.Close()
}
