package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercium/checkout-system/shared/models"
)

func TestMetadata_SetAllocatesNilMap(t *testing.T) {
	var m Metadata
	m = m.Set("source", "sqs")

	v, ok := m.Get("source")
	require.True(t, ok)
	assert.Equal(t, "sqs", v)

	m = m.Set("attempt", "2")
	assert.True(t, m.Has("attempt"))
	assert.Len(t, m, 2)
}

func TestEvent_WithMetadataOnUnmarshaledEvent(t *testing.T) {
	// Events arriving off the wire can carry a null metadata field; adding
	// metadata to them must not lose the write.
	var event Event
	require.NoError(t, json.Unmarshal([]byte(`{"event_type":"saga.started","metadata":null}`), &event))
	require.Nil(t, event.Metadata)

	event.WithMetadata("message_id", "m-1")

	v, ok := event.Metadata.Get("message_id")
	require.True(t, ok)
	assert.Equal(t, "m-1", v)
}

func TestNewEvent_PopulatesEnvelope(t *testing.T) {
	aggregateID := models.GenerateUUID()
	event := NewEvent(aggregateID, SagaStartedEvent, map[string]string{"k": "v"})

	assert.False(t, event.ID.IsEmpty())
	assert.Equal(t, aggregateID, event.AggregateID)
	assert.Equal(t, SagaStartedEvent, event.EventType)
	assert.True(t, event.Topic.Matches("saga.#"))
	assert.NotNil(t, event.Metadata)
}
