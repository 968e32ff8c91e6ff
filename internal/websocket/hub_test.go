package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"invoicing/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan []byte) ([]byte, bool) {
	t.Helper()
	select {
	case msg, ok := <-ch:
		return msg, ok
	case <-time.After(100 * time.Millisecond):
		return nil, false
	}
}

func TestHubPublishesPerCompany(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	companyA, companyB := uuid.New(), uuid.New()
	a := &Client{Hub: hub, CompanyID: companyA, Send: make(chan []byte, 4)}
	b := &Client{Hub: hub, CompanyID: companyB, Send: make(chan []byte, 4)}
	hub.register <- a
	hub.register <- b

	hub.PublishToCompany(companyA, service.Event{Type: service.EventRecurringInvoiceCreated, Data: map[string]string{"template_id": "t-1"}})

	msg, ok := receive(t, a.Send)
	require.True(t, ok)
	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, service.EventRecurringInvoiceCreated, event["type"])

	_, ok = receive(t, b.Send)
	assert.False(t, ok)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &Client{Hub: hub, CompanyID: uuid.New(), Send: make(chan []byte, 1)}
	hub.register <- client
	hub.unregister <- client

	select {
	case _, ok := <-client.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestPublishDoesNotBlockWithoutRunner(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			hub.PublishToCompany(uuid.New(), service.Event{Type: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PublishToCompany blocked")
	}
}

func TestHubStopDropsClientsAndRefusesJoins(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := &Client{Hub: hub, CompanyID: uuid.New(), Send: make(chan []byte, 1)}
	require.True(t, hub.join(client))

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	_, ok := <-client.Send
	assert.False(t, ok)

	late := &Client{Hub: hub, CompanyID: uuid.New(), Send: make(chan []byte, 1)}
	joined := make(chan bool, 1)
	go func() { joined <- hub.join(late) }()
	select {
	case ok := <-joined:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("join blocked after the hub stopped")
	}

	left := make(chan struct{})
	go func() {
		hub.leave(client)
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked after the hub stopped")
	}
}
