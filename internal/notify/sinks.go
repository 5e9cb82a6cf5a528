package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"strays/internal/chat"
)

// LogSink records every notification in the structured log.
type LogSink struct {
	Logger zerolog.Logger
}

func (LogSink) Name() string { return "log" }

func (s LogSink) Send(_ context.Context, n Notification) error {
	s.Logger.Info().
		Str("kind", string(n.Kind)).
		Str("user_id", n.UserID).
		Str("channel", n.Channel).
		Str("title", n.Title).
		Msg(n.Message)
	return nil
}

// Broadcaster is the part of the chat hub used for push delivery.
type Broadcaster interface {
	Broadcast(topic string, env chat.Envelope)
}

// PushSink pushes notifications to connected websocket clients: personal
// ones to the user's private topic, the rest to their channel.
type PushSink struct {
	Hub Broadcaster
}

func (PushSink) Name() string { return "push" }

func (s PushSink) Send(_ context.Context, n Notification) error {
	topic := n.Channel
	if n.UserID != "" {
		topic = chat.UserTopic(n.UserID)
	}
	if topic == "" {
		return fmt.Errorf("push: notification %q has no recipient", n.Title)
	}
	envType := chat.TypeNotification
	if n.Kind == KindAlert {
		envType = chat.TypeAlert
	}
	s.Hub.Broadcast(topic, chat.Envelope{Type: envType, Channel: topic, Data: n})
	return nil
}

// WebhookSink POSTs each notification as JSON to a URL.
type WebhookSink struct {
	URL    string
	Client *http.Client
}

func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{URL: url, Client: &http.Client{Timeout: 5 * time.Second}}
}

func (*WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Send(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("webhook: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}
