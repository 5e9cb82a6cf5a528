package domain

import "time"

// Feedback is free-text user feedback with a sentiment score computed at submission.
type Feedback struct {
	ID           string
	UserID       *string
	Username     string
	Message      string
	Polarity     float64
	Subjectivity float64
	SubmittedAt  time.Time
}
