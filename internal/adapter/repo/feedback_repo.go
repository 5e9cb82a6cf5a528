package repo

import (
	"context"

	"strays/internal/domain"
	"strays/internal/infra"
	"strays/internal/sqlinline"
)

type FeedbackRepositoryPG struct {
	db infra.SQLExecutor
}

func NewFeedbackRepository(db infra.SQLExecutor) *FeedbackRepositoryPG {
	return &FeedbackRepositoryPG{db: db}
}

func (r *FeedbackRepositoryPG) Create(ctx context.Context, fb *domain.Feedback) error {
	row := r.db.QueryRow(ctx, sqlinline.QInsertFeedback, fb.ID, fb.UserID, fb.Message, fb.Polarity, fb.Subjectivity)
	if err := row.Scan(&fb.SubmittedAt); err != nil {
		return mapErr("insert feedback", err)
	}
	return nil
}

func (r *FeedbackRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.Feedback, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListRecentFeedback, limit)
	if err != nil {
		return nil, mapErr("list feedback", err)
	}
	defer rows.Close()

	var items []domain.Feedback
	for rows.Next() {
		var fb domain.Feedback
		if err := rows.Scan(&fb.ID, &fb.UserID, &fb.Username, &fb.Message, &fb.Polarity, &fb.Subjectivity, &fb.SubmittedAt); err != nil {
			return nil, mapErr("list feedback", err)
		}
		items = append(items, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list feedback", err)
	}
	return items, nil
}
