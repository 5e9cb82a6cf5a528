package chat

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startHub(t *testing.T) (*Hub, func()) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	return hub, func() {
		cancel()
		<-stopped
	}
}

func recv(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case payload, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var env Envelope
		require.NoError(t, json.Unmarshal(payload, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return Envelope{}
}

func TestBroadcastReachesSubscribersOnly(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := startHub(t)
	defer stop()

	a := newClient(hub, nil, Identity{UserID: "a"}, 4)
	b := newClient(hub, nil, Identity{UserID: "b"}, 4)
	hub.Register(a)
	hub.Register(b)
	hub.Subscribe(a, TopicVolunteers)

	hub.Broadcast(TopicVolunteers, Envelope{Type: TypeMessage, Data: "hello"})
	env := recv(t, a)
	assert.Equal(t, TypeMessage, env.Type)
	assert.Equal(t, TopicVolunteers, env.Channel)

	assert.Equal(t, 1, hub.Subscribers(TopicVolunteers))
	assert.Len(t, b.send, 0)
}

func TestPrivateTopicDelivery(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := startHub(t)
	defer stop()

	a := newClient(hub, nil, Identity{UserID: "a"}, 4)
	b := newClient(hub, nil, Identity{UserID: "b"}, 4)
	hub.Register(a)
	hub.Register(b)
	hub.Subscribe(a, UserTopic("a"))
	hub.Subscribe(b, UserTopic("b"))

	hub.Broadcast(UserTopic("b"), Envelope{Type: TypeNotification, Data: "for b"})
	env := recv(t, b)
	assert.Equal(t, "user:b", env.Channel)
	assert.Equal(t, 2, hub.Online())
	assert.Len(t, a.send, 0)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := startHub(t)
	defer stop()

	a := newClient(hub, nil, Identity{UserID: "a"}, 4)
	hub.Register(a)
	hub.Subscribe(a, "lost-pets")
	hub.Unsubscribe(a, "lost-pets")
	hub.Broadcast("lost-pets", Envelope{Type: TypeMessage})

	assert.Equal(t, 0, hub.Subscribers("lost-pets"))
	assert.Len(t, a.send, 0)
}

func TestSlowClientIsDropped(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := startHub(t)
	defer stop()

	slow := newClient(hub, nil, Identity{UserID: "slow"}, 1)
	fast := newClient(hub, nil, Identity{UserID: "fast"}, 4)
	hub.Register(slow)
	hub.Register(fast)
	hub.Subscribe(slow, TopicAlerts)
	hub.Subscribe(fast, TopicAlerts)

	hub.Broadcast(TopicAlerts, Envelope{Type: TypeAlert, Data: 1})
	hub.Broadcast(TopicAlerts, Envelope{Type: TypeAlert, Data: 2})

	_, ok := <-slow.send
	assert.True(t, ok, "first frame should be buffered")
	_, ok = <-slow.send
	assert.False(t, ok, "slow client should have been disconnected")

	recv(t, fast)
	recv(t, fast)
	assert.Equal(t, 1, hub.Subscribers(TopicAlerts))
	assert.Equal(t, 1, hub.Online())
}

func TestShutdownClosesClients(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := startHub(t)

	a := newClient(hub, nil, Identity{UserID: "a"}, 1)
	hub.Register(a)
	stop()

	_, ok := <-a.send
	assert.False(t, ok)

	late := newClient(hub, nil, Identity{UserID: "late"}, 1)
	hub.Register(late)
	_, ok = <-late.send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Online())
	hub.Broadcast(TopicAlerts, Envelope{Type: TypeAlert})
}
