package domain

import "time"

// ChatMessage is a persisted chat line. Messages are append-only.
type ChatMessage struct {
	ID         string    `json:"id"`
	Channel    string    `json:"channel"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}
