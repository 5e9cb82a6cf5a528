package domain

import "time"

// EventStatus enumerates event states.
type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event is an admin-organised volunteer activity.
type Event struct {
	ID           string
	Title        string
	Description  string
	Location     string
	EventTime    time.Time
	Status       EventStatus
	CreatedBy    string
	Participants int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
