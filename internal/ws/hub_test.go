package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastDeliversEvent(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &Client{hub: hub, send: make(chan []byte, 1), userID: 7}
	hub.register <- client

	hub.Broadcast(EventQuizChanged, map[string]interface{}{"quiz_id": 1})

	select {
	case data := <-client.send:
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		assert.Equal(t, EventQuizChanged, event.Type)
	case <-time.After(time.Second):
		t.Fatal("событие не доставлено клиенту")
	}
}

func TestHub_ShutdownReleasesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := &Client{hub: hub, send: make(chan []byte, 1), userID: 7}
	hub.register <- client

	cancel()

	// После остановки hub отписка не должна блокировать горутину клиента
	released := make(chan struct{})
	go func() {
		client.disconnect()
		close(released)
	}()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("отписка клиента заблокировалась после остановки hub")
	}
}
