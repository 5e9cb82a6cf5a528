package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"strays/internal/chat"
	"strays/internal/domain"
	"strays/internal/notify"
)

type eventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	EventTime   string `json:"event_time"`
}

type eventDTO struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Location     string             `json:"location"`
	EventTime    time.Time          `json:"event_time"`
	Status       domain.EventStatus `json:"status"`
	CreatedBy    string             `json:"created_by"`
	Participants int                `json:"participants"`
}

func toEventDTO(e *domain.Event) eventDTO {
	return eventDTO{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Location:     e.Location,
		EventTime:    e.EventTime,
		Status:       e.Status,
		CreatedBy:    e.CreatedBy,
		Participants: e.Participants,
	}
}

// EventsList returns scheduled events; admins may pass all=true to include
// cancelled ones.
func (a *App) EventsList(w http.ResponseWriter, r *http.Request) {
	all := false
	if p, ok := a.actor(r); ok && p.Role == domain.UserRoleAdmin {
		all = r.URL.Query().Get("all") == "true"
	}
	events, err := a.Events.List(r.Context(), all)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]eventDTO, 0, len(events))
	for i := range events {
		items = append(items, toEventDTO(&events[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) EventCreate(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !a.decode(w, r, &req) {
		return
	}
	e, err := req.toEvent()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	e.ID = uuid.NewString()
	e.CreatedBy = a.currentUserID(r)
	if err := a.Events.Create(r.Context(), e); err != nil {
		a.fail(w, r, err)
		return
	}
	a.announce(e, "New volunteer event: "+e.Title)
	a.json(w, http.StatusCreated, toEventDTO(e))
}

func (a *App) EventUpdate(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !a.decode(w, r, &req) {
		return
	}
	e, err := req.toEvent()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	e.ID = chi.URLParam(r, "id")
	updated, err := a.Events.Update(r.Context(), e)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toEventDTO(updated))
}

func (a *App) EventCancel(w http.ResponseWriter, r *http.Request) {
	e, err := a.Events.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.announce(e, "Event cancelled: "+e.Title)
	a.json(w, http.StatusOK, toEventDTO(e))
}

// EventSignup registers the caller. Repeat sign-ups succeed with joined=false.
func (a *App) EventSignup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, err := a.Events.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if e.Status == domain.EventStatusCancelled {
		a.error(w, http.StatusConflict, "conflict", "event is cancelled")
		return
	}
	joined, err := a.Events.AddParticipant(r.Context(), id, a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	participants := e.Participants
	if joined {
		participants++
		a.Notifier.Enqueue(notify.Notification{
			Kind:    notify.KindNotification,
			UserID:  a.currentUserID(r),
			Title:   "Event Signup",
			Message: fmt.Sprintf("You signed up for %s on %s.", e.Title, e.EventTime.Format("02 Jan 2006 15:04")),
			Data:    map[string]any{"event_id": e.ID},
		})
	}
	a.json(w, http.StatusOK, map[string]any{"joined": joined, "participants": participants})
}

func (a *App) announce(e *domain.Event, message string) {
	if a.Notifier == nil {
		return
	}
	a.Notifier.Enqueue(notify.Notification{
		Kind:    notify.KindNotification,
		Channel: chat.TopicVolunteers,
		Title:   "Events",
		Message: message,
		Data:    map[string]any{"event_id": e.ID, "event_time": e.EventTime},
	})
}

func (req eventRequest) toEvent() (*domain.Event, error) {
	e := &domain.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
	}
	var problems []string
	if n := utf8.RuneCountInString(e.Title); n == 0 || n > 100 {
		problems = append(problems, "title must be 1-100 characters")
	}
	if utf8.RuneCountInString(e.Description) > 300 {
		problems = append(problems, "description must be at most 300 characters")
	}
	if n := utf8.RuneCountInString(e.Location); n == 0 || n > 200 {
		problems = append(problems, "location must be 1-200 characters")
	}
	when, err := parseOptionalTime(req.EventTime)
	switch {
	case err != nil:
		problems = append(problems, "event_time must be RFC 3339 or YYYY-MM-DDTHH:MM")
	case when == nil:
		problems = append(problems, "event_time is required")
	default:
		e.EventTime = *when
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return e, nil
}
