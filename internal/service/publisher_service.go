package service

import (
	"encoding/json"
	"log"

	"midgpt-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IPublisherService fans domain events onto the in-process bus. Publishing
// is best effort: callers never fail a request because the bus did.
type IPublisherService interface {
	Publish(event events.Event)
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

type eventEnvelope struct {
	Type       string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt int64                  `json:"occurred_at"`
}

func (p *publisherService) Publish(event events.Event) {
	envelope := eventEnvelope{
		Type:       event.EventType(),
		Payload:    event.Payload(),
		OccurredAt: event.Timestamp().UnixMilli(),
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("[ERROR] Failed to marshal event %s: %v", event.EventType(), err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := p.pubSub.Publish(p.topicName, msg); err != nil {
		log.Printf("[ERROR] Failed to publish event %s: %v", event.EventType(), err)
	}
}
