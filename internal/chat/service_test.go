package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"strays/internal/domain"
)

type memChatRepo struct {
	mu   sync.Mutex
	msgs []domain.ChatMessage
	err  error
}

func (m *memChatRepo) Append(_ context.Context, msg *domain.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memChatRepo) History(_ context.Context, channel string, _ time.Time, limit int) ([]domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ChatMessage
	for _, msg := range m.msgs {
		if msg.Channel == channel {
			out = append(out, msg)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func TestPostValidates(t *testing.T) {
	hub, stop := startHub(t)
	defer stop()
	svc := NewService(hub, &memChatRepo{}, nil, zerolog.Nop())
	user := Identity{UserID: "u1", Username: "asha"}

	_, err := svc.Post(context.Background(), user, "Bad Channel", "hi")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Post(context.Background(), user, "volunteers", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Post(context.Background(), user, "volunteers", strings.Repeat("x", 1001))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	msg, err := svc.Post(context.Background(), user, "volunteers", strings.Repeat("é", 1000))
	require.NoError(t, err)
	assert.Equal(t, "asha", msg.SenderName)
}

func TestPostDoesNotBroadcastWhenPersistFails(t *testing.T) {
	hub, stop := startHub(t)
	defer stop()
	repo := &memChatRepo{err: errors.New("db down")}
	svc := NewService(hub, repo, nil, zerolog.Nop())

	listener := newClient(hub, nil, Identity{UserID: "l"}, 4)
	hub.Register(listener)
	hub.Subscribe(listener, TopicVolunteers)

	_, err := svc.Post(context.Background(), Identity{UserID: "u1"}, TopicVolunteers, "hello")
	require.Error(t, err)
	assert.Equal(t, 1, hub.Subscribers(TopicVolunteers))
	assert.Len(t, listener.send, 0)
}

func TestCanRead(t *testing.T) {
	svc := NewService(NewHub(zerolog.Nop()), &memChatRepo{}, nil, zerolog.Nop())
	me := Identity{UserID: "u1"}
	assert.NoError(t, svc.CanRead(me, "volunteers"))
	assert.NoError(t, svc.CanRead(me, "user:u1"))
	assert.ErrorIs(t, svc.CanRead(me, "user:u2"), domain.ErrForbidden)
	assert.ErrorIs(t, svc.CanRead(me, "UPPER"), domain.ErrInvalidInput)
}

func TestHistoryClampsLimit(t *testing.T) {
	repo := &memChatRepo{}
	for i := 0; i < 5; i++ {
		repo.msgs = append(repo.msgs, domain.ChatMessage{ID: string(rune('a' + i)), Channel: "volunteers"})
	}
	svc := NewService(NewHub(zerolog.Nop()), repo, nil, zerolog.Nop())
	msgs, err := svc.History(context.Background(), Identity{UserID: "u1"}, "volunteers", time.Time{}, 2)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, "e", msgs[1].ID)
}

func TestWebsocketRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := startHub(t)
	defer stop()

	repo := &memChatRepo{}
	svc := NewService(hub, repo, nil, zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		svc.ServeWS(w, r, Identity{UserID: "u1", Username: "asha", Role: "volunteer"})
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "message", "channel": "volunteers", "body": "dog near gate 3"}))
	var env struct {
		Type    string             `json:"type"`
		Channel string             `json:"channel"`
		Data    domain.ChatMessage `json:"data"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, TypeMessage, env.Type)
	assert.Equal(t, "volunteers", env.Channel)
	assert.Equal(t, "dog near gate 3", env.Data.Body)
	assert.Equal(t, "asha", env.Data.SenderName)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe", "channel": "user:someone-else"}))
	var errEnv Envelope
	require.NoError(t, conn.ReadJSON(&errEnv))
	assert.Equal(t, TypeError, errEnv.Type)

	repo.mu.Lock()
	assert.Len(t, repo.msgs, 1)
	repo.mu.Unlock()

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return hub.Online() == 0 }, 2*time.Second, 10*time.Millisecond)
}
