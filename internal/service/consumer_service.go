package service

import (
	"context"
	"encoding/json"
	"time"

	"fitai-planner-be/internal/pkg/logger"
	pkgEvents "fitai-planner-be/pkg/events"
	pktNats "fitai-planner-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/cenkalti/backoff/v5"
)

const forwardMaxTries = 3

// EventForwarder ships events out of the process, e.g. to NATS JetStream.
type EventForwarder interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	forwarder  EventForwarder
	logger     logger.ILogger
	newBackOff func() backoff.BackOff
}

// NewConsumerService drains topicName and forwards each event. A nil
// forwarder only logs the events.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	forwarder EventForwarder,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		forwarder: forwarder,
		logger:    log,
		newBackOff: func() backoff.BackOff {
			return backoff.NewConstantBackOff(500 * time.Millisecond)
		},
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var env pktNats.Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		cs.logger.Error("EVENTS", "Dropping malformed event", map[string]interface{}{
			"id":    msg.UUID,
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	if cs.forwarder == nil {
		cs.logger.Info("EVENTS", "Event received", map[string]interface{}{
			"type": env.Type,
			"data": env.Data,
		})
		msg.Ack()
		return
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, cs.forwarder.Publish(ctx, env.Event())
	},
		backoff.WithBackOff(cs.newBackOff()),
		backoff.WithMaxTries(forwardMaxTries),
	)
	if err != nil {
		// the in-process bus has no dead letter queue; the event is lost
		cs.logger.Error("EVENTS", "Failed to forward event", map[string]interface{}{
			"type":  env.Type,
			"id":    msg.UUID,
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	cs.logger.Debug("EVENTS", "Event forwarded", map[string]interface{}{
		"type": env.Type,
		"id":   msg.UUID,
	})
	msg.Ack()
}
