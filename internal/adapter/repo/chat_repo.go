package repo

import (
	"context"
	"time"

	"strays/internal/domain"
	"strays/internal/infra"
	"strays/internal/sqlinline"
)

// ChatRepositoryPG stores chat messages in PostgreSQL.
type ChatRepositoryPG struct {
	db infra.SQLExecutor
}

func NewChatRepository(db infra.SQLExecutor) *ChatRepositoryPG {
	return &ChatRepositoryPG{db: db}
}

// Append persists msg and sets its CreatedAt.
func (r *ChatRepositoryPG) Append(ctx context.Context, msg *domain.ChatMessage) error {
	row := r.db.QueryRow(ctx, sqlinline.QInsertChatMessage, msg.ID, msg.Channel, msg.SenderID, msg.SenderName, msg.Body)
	if err := row.Scan(&msg.CreatedAt); err != nil {
		return mapErr("insert chat message", err)
	}
	return nil
}

// History returns up to limit messages older than before, oldest first.
func (r *ChatRepositoryPG) History(ctx context.Context, channel string, before time.Time, limit int) ([]domain.ChatMessage, error) {
	if before.IsZero() {
		before = time.Now().Add(time.Minute)
	}
	rows, err := r.db.Query(ctx, sqlinline.QChatHistory, channel, before, limit)
	if err != nil {
		return nil, mapErr("chat history", err)
	}
	defer rows.Close()

	var msgs []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.Channel, &m.SenderID, &m.SenderName, &m.Body, &m.CreatedAt); err != nil {
			return nil, mapErr("chat history", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("chat history", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
