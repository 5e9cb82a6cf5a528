package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"strays/internal/domain"
)

const (
	maxBodyRunes   = 1000
	defaultHistory = 50
	maxHistory     = 200
	persistTimeout = 5 * time.Second
)

var channelPattern = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// ValidChannel reports whether name is a public channel name.
func ValidChannel(name string) bool {
	return channelPattern.MatchString(name)
}

// inbound is a frame sent by a client.
type inbound struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
	Body    string `json:"body"`
}

// Service accepts websocket connections, persists chat messages and routes them through the hub.
type Service struct {
	hub      *Hub
	repo     domain.ChatRepository
	logger   zerolog.Logger
	upgrader websocket.Upgrader
	now      func() time.Time
}

func NewService(hub *Hub, repo domain.ChatRepository, allowedOrigins []string, logger zerolog.Logger) *Service {
	allow := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allow[o] = struct{}{}
	}
	return &Service{
		hub:    hub,
		repo:   repo,
		logger: logger,
		now:    time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allow) == 0 {
					return true
				}
				_, ok := allow[origin]
				return ok
			},
		},
	}
}

func (s *Service) Hub() *Hub { return s.hub }

// ServeWS upgrades the request and attaches the connection to the hub. The
// client is subscribed to its private topic and the shared volunteer,
// alert and announcement channels.
func (s *Service) ServeWS(w http.ResponseWriter, r *http.Request, user Identity) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := newClient(s.hub, conn, user, sendBuffer)
	s.hub.Register(c)
	for _, topic := range []string{UserTopic(user.UserID), TopicVolunteers, TopicAlerts, TopicAnnouncements} {
		s.hub.Subscribe(c, topic)
	}
	s.logger.Debug().Str("user_id", user.UserID).Msg("chat client connected")

	go c.writePump()
	go s.readPump(c)
}

func (s *Service) readPump(c *Client) {
	defer func() {
		s.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug().Err(err).Str("user_id", c.user.UserID).Msg("chat read")
			}
			return
		}
		var frame inbound
		if err := json.Unmarshal(data, &frame); err != nil {
			s.hub.SendTo(c, errorEnvelope("", "malformed frame"))
			continue
		}
		s.handle(c, frame)
	}
}

func (s *Service) handle(c *Client, frame inbound) {
	switch frame.Type {
	case TypeMessage:
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if _, err := s.Post(ctx, c.user, frame.Channel, frame.Body); err != nil {
			s.hub.SendTo(c, errorEnvelope(frame.Channel, publicMessage(err)))
		}
	case TypeSubscribe:
		if err := s.CanRead(c.user, frame.Channel); err != nil {
			s.hub.SendTo(c, errorEnvelope(frame.Channel, publicMessage(err)))
			return
		}
		s.hub.Subscribe(c, frame.Channel)
	case TypeUnsubscribe:
		s.hub.Unsubscribe(c, frame.Channel)
	default:
		s.hub.SendTo(c, errorEnvelope(frame.Channel, fmt.Sprintf("unknown frame type %q", frame.Type)))
	}
}

// Post validates, persists and then broadcasts a message. Nothing is
// broadcast when persistence fails.
func (s *Service) Post(ctx context.Context, user Identity, channel, body string) (*domain.ChatMessage, error) {
	if !ValidChannel(channel) {
		return nil, fmt.Errorf("%w: invalid channel %q", domain.ErrInvalidInput, channel)
	}
	body = strings.TrimSpace(body)
	if n := utf8.RuneCountInString(body); n == 0 || n > maxBodyRunes {
		return nil, fmt.Errorf("%w: message must be 1-%d characters", domain.ErrInvalidInput, maxBodyRunes)
	}
	msg := &domain.ChatMessage{
		ID:         uuid.NewString(),
		Channel:    channel,
		SenderID:   user.UserID,
		SenderName: user.Username,
		Body:       body,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Append(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("channel", channel).Msg("persist chat message")
		return nil, fmt.Errorf("store message: %w", err)
	}
	s.hub.Broadcast(channel, Envelope{Type: TypeMessage, Channel: channel, Data: msg})
	return msg, nil
}

// CanRead reports whether user may subscribe to or read the history of topic.
func (s *Service) CanRead(user Identity, topic string) error {
	if IsUserTopic(topic) {
		if topic != UserTopic(user.UserID) {
			return fmt.Errorf("%w: private channel", domain.ErrForbidden)
		}
		return nil
	}
	if !ValidChannel(topic) {
		return fmt.Errorf("%w: invalid channel %q", domain.ErrInvalidInput, topic)
	}
	return nil
}

// History returns the latest messages of channel older than before, oldest first.
func (s *Service) History(ctx context.Context, user Identity, channel string, before time.Time, limit int) ([]domain.ChatMessage, error) {
	if err := s.CanRead(user, channel); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistory
	}
	if limit > maxHistory {
		limit = maxHistory
	}
	return s.repo.History(ctx, channel, before, limit)
}

func errorEnvelope(channel, msg string) Envelope {
	return Envelope{Type: TypeError, Channel: channel, Data: map[string]string{"message": msg}}
}

func publicMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrForbidden):
		return err.Error()
	default:
		return "message could not be delivered"
	}
}
