// Package chat implements the websocket hub that routes chat messages,
// notifications and alerts to connected clients by topic.
package chat

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
)

// Envelope is the outbound frame shape.
type Envelope struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Frame types.
const (
	TypeMessage      = "message"
	TypeNotification = "notification"
	TypeAlert        = "alert"
	TypeError        = "error"
	TypeSubscribe    = "subscribe"
	TypeUnsubscribe  = "unsubscribe"
)

// Well-known topics every client joins on connect.
const (
	TopicVolunteers    = "volunteers"
	TopicAlerts        = "alerts"
	TopicAnnouncements = "announcements"
)

const userTopicPrefix = "user:"

// UserTopic returns the private topic of a user.
func UserTopic(userID string) string {
	return userTopicPrefix + userID
}

// IsUserTopic reports whether topic is some user's private topic.
func IsUserTopic(topic string) bool {
	return strings.HasPrefix(topic, userTopicPrefix)
}

type subscription struct {
	client *Client
	topic  string
}

type publication struct {
	topic   string
	payload []byte
}

type direct struct {
	client  *Client
	payload []byte
}

// Hub owns the topic to subscriber mapping. All state is confined to the
// goroutine running Run; other goroutines talk to it over channels.
type Hub struct {
	logger zerolog.Logger

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	publish     chan publication
	direct      chan direct
	query       chan func()
	done        chan struct{}

	clients map[*Client]map[string]struct{}
	topics  map[string]map[*Client]struct{}
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger:      logger,
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		publish:     make(chan publication),
		direct:      make(chan direct),
		query:       make(chan func()),
		done:        make(chan struct{}),
		clients:     make(map[*Client]map[string]struct{}),
		topics:      make(map[string]map[*Client]struct{}),
	}
}

// Run processes hub operations until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = make(map[string]struct{})
		case c := <-h.unregister:
			h.drop(c)
		case s := <-h.subscribe:
			h.addSubscription(s.client, s.topic)
		case s := <-h.unsubscribe:
			h.removeSubscription(s.client, s.topic)
		case p := <-h.publish:
			for c := range h.topics[p.topic] {
				h.deliver(c, p.payload)
			}
		case d := <-h.direct:
			if _, ok := h.clients[d.client]; ok {
				h.deliver(d.client, d.payload)
			}
		case fn := <-h.query:
			fn()
		}
	}
}

func (h *Hub) addSubscription(c *Client, topic string) {
	subs, ok := h.clients[c]
	if !ok {
		return
	}
	subs[topic] = struct{}{}
	members := h.topics[topic]
	if members == nil {
		members = make(map[*Client]struct{})
		h.topics[topic] = members
	}
	members[c] = struct{}{}
}

func (h *Hub) removeSubscription(c *Client, topic string) {
	if subs, ok := h.clients[c]; ok {
		delete(subs, topic)
	}
	if members := h.topics[topic]; members != nil {
		delete(members, c)
		if len(members) == 0 {
			delete(h.topics, topic)
		}
	}
}

// deliver never blocks: a client whose buffer is full is disconnected.
func (h *Hub) deliver(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		h.logger.Warn().Str("user_id", c.user.UserID).Msg("chat client too slow, dropping")
		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	subs, ok := h.clients[c]
	if !ok {
		return
	}
	for topic := range subs {
		if members := h.topics[topic]; members != nil {
			delete(members, c)
			if len(members) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) Subscribe(c *Client, topic string) {
	select {
	case h.subscribe <- subscription{client: c, topic: topic}:
	case <-h.done:
	}
}

func (h *Hub) Unsubscribe(c *Client, topic string) {
	select {
	case h.unsubscribe <- subscription{client: c, topic: topic}:
	case <-h.done:
	}
}

// Broadcast sends env to every subscriber of topic.
func (h *Hub) Broadcast(topic string, env Envelope) {
	if env.Channel == "" {
		env.Channel = topic
	}
	payload, err := json.Marshal(env)
	if err != nil {
		h.logger.Error().Err(err).Str("topic", topic).Msg("encode envelope")
		return
	}
	select {
	case h.publish <- publication{topic: topic, payload: payload}:
	case <-h.done:
	}
}

// SendTo delivers env to a single client.
func (h *Hub) SendTo(c *Client, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		h.logger.Error().Err(err).Msg("encode envelope")
		return
	}
	select {
	case h.direct <- direct{client: c, payload: payload}:
	case <-h.done:
	}
}

// Subscribers returns the number of clients subscribed to topic.
func (h *Hub) Subscribers(topic string) int {
	result := make(chan int, 1)
	select {
	case h.query <- func() { result <- len(h.topics[topic]) }:
		return <-result
	case <-h.done:
		return 0
	}
}

// Online returns the number of connected clients.
func (h *Hub) Online() int {
	result := make(chan int, 1)
	select {
	case h.query <- func() { result <- len(h.clients) }:
		return <-result
	case <-h.done:
		return 0
	}
}
