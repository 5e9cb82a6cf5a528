// Package notify fans notifications out to sinks from a bounded background queue.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Kind distinguishes personal notifications from broadcast alerts.
type Kind string

const (
	KindNotification Kind = "notification"
	KindAlert        Kind = "alert"
)

// Notification is addressed to a user (UserID set) or to a channel.
type Notification struct {
	Kind      Kind      `json:"kind"`
	UserID    string    `json:"user_id,omitempty"`
	Channel   string    `json:"channel,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink delivers notifications somewhere.
type Sink interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

const sendTimeout = 10 * time.Second

// Dispatcher drains a bounded queue with a fixed number of workers.
type Dispatcher struct {
	logger zerolog.Logger
	sinks  []Sink
	queue  chan Notification

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts workers goroutines. Call Close to drain and stop them.
func NewDispatcher(logger zerolog.Logger, workers, queueSize int, sinks ...Sink) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &Dispatcher{
		logger: logger,
		sinks:  sinks,
		queue:  make(chan Notification, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Enqueue schedules n for delivery without blocking. It returns false when
// the queue is full or the dispatcher is closed; the notification is dropped.
func (d *Dispatcher) Enqueue(n Notification) bool {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Kind == "" {
		n.Kind = KindNotification
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn().Str("title", n.Title).Msg("notification dropped: dispatcher closed")
		return false
	}
	select {
	case d.queue <- n:
		return true
	default:
		d.logger.Warn().Str("title", n.Title).Str("user_id", n.UserID).Msg("notification dropped: queue full")
		return false
	}
}

// Close stops accepting notifications, delivers what is queued and waits for the workers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for n := range d.queue {
		for _, s := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			if err := s.Send(ctx, n); err != nil {
				d.logger.Error().Err(err).Str("sink", s.Name()).Str("title", n.Title).Msg("notification delivery failed")
			}
			cancel()
		}
	}
}
