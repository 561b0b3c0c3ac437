package events

import (
	"context"
	"encoding/json"
	"errors"

	"cloud.google.com/go/pubsub"
	"github.com/buddybudget/wealth_backend/config"
)

type PubSubPublisher struct {
	topic *pubsub.Topic
}

// NewPubSubPublisher resolves (or creates) the topic on the shared Pub/Sub client.
func NewPubSubPublisher(ctx context.Context, topicName string) (*PubSubPublisher, error) {
	if topicName == "" {
		return nil, errors.New("PUBSUB_TOPIC is required")
	}
	client, err := config.GetPubSubClient(ctx)
	if err != nil {
		return nil, err
	}
	t, err := config.CreateTopicIfNotExists(ctx, client, topicName)
	if err != nil {
		return nil, err
	}
	t.EnableMessageOrdering = true
	return &PubSubPublisher{topic: t}, nil
}

func (p *PubSubPublisher) Publish(ctx context.Context, msg Message) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:        data,
		OrderingKey: msg.Key(),
		Attributes: map[string]string{
			"event_type":     msg.EventType,
			"correlation_id": msg.CorrelationId,
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		// Ordered publishing pauses the key after a failure until resumed.
		p.topic.ResumePublish(msg.Key())
		return "", err
	}
	return id, nil
}

func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return nil
}
