package events

import (
	"context"
	"encoding/json"
	"fmt"

	"fitai-planner-be/internal/pkg/logger"
	pkgEvents "fitai-planner-be/pkg/events"
	pktNats "fitai-planner-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// PlanTopic carries every plan lifecycle event inside the process.
const PlanTopic = "plan.events"

// Bus is the in-process event bus. Pipelines publish to it without waiting
// on the network; a consumer forwards messages to NATS.
type Bus struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func NewBus(log logger.ILogger) *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewStdLogger(false, false),
		),
		logger: log,
	}
}

func (b *Bus) PubSub() *gochannel.GoChannel {
	return b.pubSub
}

func (b *Bus) Publish(ctx context.Context, event pkgEvents.Event) error {
	payload, err := json.Marshal(pktNats.NewEnvelope(event))
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.EventType(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", event.EventType())

	if err := b.pubSub.Publish(PlanTopic, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", event.EventType(), err)
	}

	b.logger.Debug("EVENTS", "Event queued", map[string]interface{}{
		"type": event.EventType(),
		"id":   msg.UUID,
	})
	return nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
