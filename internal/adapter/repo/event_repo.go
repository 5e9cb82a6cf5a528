package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"strays/internal/domain"
	"strays/internal/infra"
	"strays/internal/sqlinline"
)

// EventRepositoryPG implements EventRepository using PostgreSQL.
type EventRepositoryPG struct {
	db infra.SQLExecutor
}

func NewEventRepository(db infra.SQLExecutor) *EventRepositoryPG {
	return &EventRepositoryPG{db: db}
}

func (r *EventRepositoryPG) Create(ctx context.Context, e *domain.Event) error {
	var status string
	row := r.db.QueryRow(ctx, sqlinline.QInsertEvent, e.ID, e.Title, e.Description, e.Location, e.EventTime, e.CreatedBy)
	if err := row.Scan(&status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return mapErr("insert event", err)
	}
	e.Status = domain.EventStatus(status)
	return nil
}

func (r *EventRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.one(ctx, "select event", sqlinline.QSelectEventByID, id)
}

// List returns events ordered by start time. Cancelled events are included on request.
func (r *EventRepositoryPG) List(ctx context.Context, includeCancelled bool) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListEvents, includeCancelled)
	if err != nil {
		return nil, mapErr("list events", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, mapErr("list events", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list events", err)
	}
	return events, nil
}

func (r *EventRepositoryPG) Update(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	return r.one(ctx, "update event", sqlinline.QUpdateEvent, e.ID, e.Title, e.Description, e.Location, e.EventTime)
}

func (r *EventRepositoryPG) Cancel(ctx context.Context, id string) (*domain.Event, error) {
	return r.one(ctx, "cancel event", sqlinline.QCancelEvent, id)
}

// AddParticipant records a sign-up. It reports false when the pair already
// existed and ErrConflict when the event is cancelled.
func (r *EventRepositoryPG) AddParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	var (
		status   *string
		inserted bool
	)
	err := r.db.QueryRow(ctx, sqlinline.QInsertEventParticipant, eventID, userID).Scan(&status, &inserted)
	if err != nil {
		return false, mapErr("add participant", err)
	}
	switch {
	case status == nil:
		return false, fmt.Errorf("add participant: %w", domain.ErrNotFound)
	case domain.EventStatus(*status) != domain.EventStatusScheduled:
		return false, fmt.Errorf("add participant: event is cancelled: %w", domain.ErrConflict)
	}
	return inserted, nil
}

func (r *EventRepositoryPG) one(ctx context.Context, op, query string, args ...any) (*domain.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapErr(op, err)
	}
	return &e, nil
}

func scanEvent(row pgx.Row) (domain.Event, error) {
	var (
		e      domain.Event
		status string
	)
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.EventTime, &status, &e.CreatedBy,
		&e.Participants, &e.CreatedAt, &e.UpdatedAt)
	e.Status = domain.EventStatus(status)
	return e, err
}
