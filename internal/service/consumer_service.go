package service

import (
	"context"
	"encoding/json"
	"log"

	"midgpt-be/internal/pkg/logger"
	"midgpt-be/pkg/events"
	pktNats "midgpt-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process event bus: every event is audit
// logged and forwarded to NATS when a connection is available.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	natsPub   *pktNats.Publisher
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	natsPub *pktNats.Publisher,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		natsPub:   natsPub,
		logger:    sysLogger,
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
	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		log.Printf("[ERROR] Failed to unmarshal event: %v", err)
		msg.Ack() // malformed payloads never become valid on retry
		return
	}

	cs.logger.Info("events", "domain event", map[string]interface{}{
		"type":        envelope.Type,
		"payload":     envelope.Payload,
		"occurred_at": envelope.OccurredAt,
	})

	if cs.natsPub != nil {
		event := events.BaseEvent{Type: envelope.Type, Data: envelope.Payload}
		if err := cs.natsPub.Publish(ctx, event); err != nil {
			// Forwarding is best effort. The audit log above is the
			// durable record inside this process.
			log.Printf("[WARN] Failed to forward event %s to NATS: %v", envelope.Type, err)
		}
	}

	msg.Ack()
}
