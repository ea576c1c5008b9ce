package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliversUserAndCityEvents(t *testing.T) {
	b := NewBroker()
	hub := NewHub(b)

	client, err := hub.Register(10, " Pune ", nil)
	require.NoError(t, err)
	assert.True(t, hub.IsOnline(10))
	assert.Equal(t, 2, b.SubscriberCount())

	ctx := context.Background()
	b.Publish(ctx, Event{Collection: CollectionChats, Kind: KindChatMessage, DocID: 3, Users: []uint{10, 11}})
	b.Publish(ctx, Event{Collection: CollectionCommunity, Kind: KindCommunityMessage, City: "pune"})
	b.Publish(ctx, Event{Collection: CollectionCommunity, Kind: KindCommunityMessage, City: "goa"})
	b.Publish(ctx, Event{Collection: CollectionChats, Kind: KindChatMessage, Users: []uint{11, 12}})

	require.Len(t, client.Send, 2)
	var first wireMessage
	require.NoError(t, json.Unmarshal(<-client.Send, &first))
	assert.Equal(t, KindChatMessage, first.Type)
	assert.Equal(t, uint(3), first.DocID)
}

func TestHub_DeduplicatesEventsMatchingTwoSubscriptions(t *testing.T) {
	b := NewBroker()
	hub := NewHub(b)
	client, err := hub.Register(10, "pune", nil)
	require.NoError(t, err)

	b.Publish(context.Background(), Event{
		Collection: CollectionTasks, Kind: KindTaskCreated, Users: []uint{10}, City: "pune",
	})
	assert.Len(t, client.Send, 1)
}

func TestHub_UnregisterCancelsSubscriptions(t *testing.T) {
	b := NewBroker()
	hub := NewHub(b)
	client, err := hub.Register(10, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, b.SubscriberCount())

	hub.Unregister(client)
	hub.Unregister(client)
	assert.False(t, hub.IsOnline(10))
	assert.Zero(t, b.SubscriberCount())
	assert.Zero(t, hub.ConnectionCount())
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub(NewBroker())
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(1, "", nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(1, "", nil)
	assert.ErrorIs(t, err, ErrUserFull)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Zero(t, hub.ConnectionCount())
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub(NewBroker())
	client, err := hub.Register(1, "", nil)
	require.NoError(t, err)
	for i := 0; i < cap(client.Send); i++ {
		client.TrySend([]byte("x"))
	}
	assert.NotPanics(t, func() { client.TrySend([]byte("overflow")) })
	assert.Len(t, client.Send, cap(client.Send))
}
