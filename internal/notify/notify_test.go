package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"strays/internal/chat"
)

type recordingSink struct {
	name  string
	mu    sync.Mutex
	got   []Notification
	err   error
	block chan struct{}
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Send(_ context.Context, n Notification) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, n)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func TestDispatcherFansOutToAllSinks(t *testing.T) {
	defer goleak.VerifyNone(t)
	failing := &recordingSink{name: "failing", err: errors.New("nope")}
	ok := &recordingSink{name: "ok"}
	d := NewDispatcher(zerolog.Nop(), 2, 8, failing, ok)

	for i := 0; i < 3; i++ {
		require.True(t, d.Enqueue(Notification{UserID: "u1", Title: "New Donation"}))
	}
	d.Close()

	assert.Equal(t, 3, failing.count())
	assert.Equal(t, 3, ok.count())
	assert.Equal(t, KindNotification, ok.got[0].Kind)
	assert.False(t, ok.got[0].CreatedAt.IsZero())
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	defer goleak.VerifyNone(t)
	sink := &recordingSink{name: "slow", block: make(chan struct{})}
	d := NewDispatcher(zerolog.Nop(), 1, 1, sink)

	accepted := 0
	for i := 0; i < 5; i++ {
		if d.Enqueue(Notification{Title: "x", Channel: "alerts"}) {
			accepted++
		}
	}
	assert.Less(t, accepted, 5)
	assert.GreaterOrEqual(t, accepted, 1)

	close(sink.block)
	d.Close()
	assert.Equal(t, accepted, sink.count())
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)
	d := NewDispatcher(zerolog.Nop(), 1, 1)
	d.Close()
	d.Close()
	assert.False(t, d.Enqueue(Notification{Title: "late"}))
}

type fakeBroadcaster struct {
	topics []string
	envs   []chat.Envelope
}

func (f *fakeBroadcaster) Broadcast(topic string, env chat.Envelope) {
	f.topics = append(f.topics, topic)
	f.envs = append(f.envs, env)
}

func TestPushSinkRouting(t *testing.T) {
	hub := &fakeBroadcaster{}
	sink := PushSink{Hub: hub}

	require.NoError(t, sink.Send(context.Background(), Notification{Kind: KindNotification, UserID: "u7", Title: "New Report"}))
	require.NoError(t, sink.Send(context.Background(), Notification{Kind: KindAlert, Channel: chat.TopicAlerts, Title: "Stray nearby"}))
	assert.Error(t, sink.Send(context.Background(), Notification{Title: "nobody"}))

	assert.Equal(t, []string{"user:u7", "alerts"}, hub.topics)
	assert.Equal(t, chat.TypeNotification, hub.envs[0].Type)
	assert.Equal(t, chat.TypeAlert, hub.envs[1].Type)
}

func TestWebhookSink(t *testing.T) {
	var got Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL)
	require.NoError(t, sink.Send(context.Background(), Notification{Title: "New Donation", Message: "thanks"}))
	assert.Equal(t, "New Donation", got.Title)
}

func TestWebhookSinkErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookSink(srv.URL).Send(context.Background(), Notification{Title: "x"})
	assert.ErrorContains(t, err, "502")
}
