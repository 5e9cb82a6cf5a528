package handlers

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"strays/internal/domain"
	"strays/internal/sentiment"
)

const recentFeedback = 50

type feedbackRequest struct {
	Message string `json:"message"`
}

type feedbackDTO struct {
	ID           string    `json:"id"`
	UserID       *string   `json:"user_id"`
	Username     string    `json:"username,omitempty"`
	Message      string    `json:"message"`
	Polarity     float64   `json:"polarity"`
	Subjectivity float64   `json:"subjectivity"`
	Sentiment    string    `json:"sentiment"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

func toFeedbackDTO(fb domain.Feedback) feedbackDTO {
	return feedbackDTO{
		ID:           fb.ID,
		UserID:       fb.UserID,
		Username:     fb.Username,
		Message:      fb.Message,
		Polarity:     fb.Polarity,
		Subjectivity: fb.Subjectivity,
		Sentiment:    sentiment.Score{Polarity: fb.Polarity}.Label(),
		SubmittedAt:  fb.SubmittedAt,
	}
}

// FeedbackCreate scores the message once and stores it with the score.
func (a *App) FeedbackCreate(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !a.decode(w, r, &req) {
		return
	}
	msg := strings.TrimSpace(req.Message)
	if n := utf8.RuneCountInString(msg); n == 0 || n > 500 {
		a.error(w, http.StatusBadRequest, "bad_request", "message must be 1-500 characters")
		return
	}
	score := sentiment.Analyze(msg)
	fb := &domain.Feedback{
		ID:           uuid.NewString(),
		Message:      msg,
		Polarity:     score.Polarity,
		Subjectivity: score.Subjectivity,
	}
	if p, ok := a.actor(r); ok {
		fb.UserID = &p.ID
		fb.Username = p.Username
	}
	if err := a.Feedback.Create(r.Context(), fb); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toFeedbackDTO(*fb))
}

func (a *App) FeedbackList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Feedback.ListRecent(r.Context(), queryInt(r, "limit", recentFeedback, 200))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]feedbackDTO, 0, len(items))
	for _, fb := range items {
		out = append(out, toFeedbackDTO(fb))
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}

// FeedbackSentiment summarizes recent feedback by sentiment label.
func (a *App) FeedbackSentiment(w http.ResponseWriter, r *http.Request) {
	items, err := a.Feedback.ListRecent(r.Context(), queryInt(r, "limit", recentFeedback, 500))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	counts := map[string]int{"positive": 0, "neutral": 0, "negative": 0}
	var sumPolarity, sumSubjectivity float64
	for _, fb := range items {
		counts[sentiment.Score{Polarity: fb.Polarity}.Label()]++
		sumPolarity += fb.Polarity
		sumSubjectivity += fb.Subjectivity
	}
	avgPolarity, avgSubjectivity := 0.0, 0.0
	if n := len(items); n > 0 {
		avgPolarity = sumPolarity / float64(n)
		avgSubjectivity = sumSubjectivity / float64(n)
	}
	a.json(w, http.StatusOK, map[string]any{
		"count":                len(items),
		"average_polarity":     avgPolarity,
		"average_subjectivity": avgSubjectivity,
		"overall":              sentiment.Score{Polarity: avgPolarity}.Label(),
		"breakdown":            counts,
	})
}
