package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/buddybudget/wealth_backend/config"
)

// Message is the envelope published for every committed ledger event.
type Message struct {
	EventId       int             `json:"eventId"`
	UserId        string          `json:"userId"`
	EventType     string          `json:"eventType"`
	ReferenceId   string          `json:"referenceId"`
	OccurredAt    time.Time       `json:"occurredAt"`
	CorrelationId string          `json:"correlationId,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// Key is used as ordering key / routing key so one owner's events stay in order.
func (m Message) Key() string {
	return m.UserId
}

// Publisher delivers a message and returns the broker-assigned message id.
type Publisher interface {
	Publish(ctx context.Context, msg Message) (string, error)
	Close() error
}

// NopPublisher drops everything. Used when EVENTS_TRANSPORT=none.
type NopPublisher struct{}

func (NopPublisher) Publish(_ context.Context, msg Message) (string, error) {
	return "nop-" + strconv.Itoa(msg.EventId), nil
}

func (NopPublisher) Close() error { return nil }

// NewPublisher builds the publisher selected by settings.EventsTransport.
func NewPublisher(ctx context.Context, settings config.Settings) (Publisher, error) {
	switch settings.EventsTransport {
	case config.EventsTransportPubSub:
		return NewPubSubPublisher(ctx, settings.PubSubTopic)
	case config.EventsTransportAMQP:
		return NewAMQPPublisher(settings.AMQPURL, settings.AMQPExchange)
	case config.EventsTransportNone, "":
		return NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("events transport %q is not supported", settings.EventsTransport)
	}
}
