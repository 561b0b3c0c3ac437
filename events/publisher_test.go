package events

import (
	"context"
	"testing"

	"github.com/buddybudget/wealth_backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublisher_NoneIsNop(t *testing.T) {
	p, err := NewPublisher(context.Background(), config.Settings{EventsTransport: config.EventsTransportNone})
	require.NoError(t, err)
	id, err := p.Publish(context.Background(), Message{EventId: 42, UserId: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "nop-42", id)
	assert.NoError(t, p.Close())
}

func TestNewPublisher_UnknownTransport(t *testing.T) {
	_, err := NewPublisher(context.Background(), config.Settings{EventsTransport: "kafka"})
	assert.Error(t, err)
}

func TestMessageKeyIsOwner(t *testing.T) {
	assert.Equal(t, "user-1", Message{UserId: "user-1", EventType: "account.created"}.Key())
}
