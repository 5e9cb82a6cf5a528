package domain

import (
	"context"
	"time"
)

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdateProfile(ctx context.Context, id, username, email string) (*User, error)
	SetRole(ctx context.Context, id string, role UserRole) (*User, error)
	Leaderboard(ctx context.Context, limit int) ([]User, error)
}

// DonationRepository handles donation persistence.
type DonationRepository interface {
	// Create inserts the donation and credits the donor with points in one statement.
	Create(ctx context.Context, donation *Donation, points int) error
	ListRecent(ctx context.Context, limit int) ([]Donation, error)
	ListAll(ctx context.Context) ([]Donation, error)
	ListUnlocated(ctx context.Context, limit int) ([]Donation, error)
	SetLocation(ctx context.Context, id string, p Point) error
}

// ReportRepository handles sighting report persistence.
type ReportRepository interface {
	// Create inserts the report and credits the reporter with points in one statement.
	Create(ctx context.Context, report *Report, points int) error
	GetByID(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context, filter ReportFilter) ([]Report, error)
	AnimalTypes(ctx context.Context) ([]string, error)
	// UpdateStatus applies the change only when the stored status still equals change.From.
	UpdateStatus(ctx context.Context, change ReportStatusChange) (*Report, error)
	ListUnlocated(ctx context.Context, limit int) ([]Report, error)
	SetLocation(ctx context.Context, id string, p Point) error
}

// EventRepository handles volunteer events.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, includeCancelled bool) ([]Event, error)
	Update(ctx context.Context, event *Event) (*Event, error)
	Cancel(ctx context.Context, id string) (*Event, error)
	// AddParticipant returns false when the user had already signed up and
	// ErrConflict when the event is no longer scheduled.
	AddParticipant(ctx context.Context, eventID, userID string) (bool, error)
}

// ChatRepository stores chat history.
type ChatRepository interface {
	Append(ctx context.Context, msg *ChatMessage) error
	History(ctx context.Context, channel string, before time.Time, limit int) ([]ChatMessage, error)
}

// FeedbackRepository stores feedback entries.
type FeedbackRepository interface {
	Create(ctx context.Context, fb *Feedback) error
	ListRecent(ctx context.Context, limit int) ([]Feedback, error)
}

// AnalyticsRepository runs aggregate queries for dashboards.
type AnalyticsRepository interface {
	DonationTotals(ctx context.Context) (DonationTotals, error)
	DonationsByMonth(ctx context.Context) ([]MonthlyCount, error)
	ReportsByMonth(ctx context.Context) ([]MonthlyCount, error)
	ReportsByStatus(ctx context.Context) (map[ReportStatus]int, error)
	UsersByRole(ctx context.Context) (map[UserRole]int, error)
	UpcomingEvents(ctx context.Context, now time.Time) (int, error)
	FeedbackSentiment(ctx context.Context) (count int, avgPolarity float64, err error)
}

// GeocodeCacheRepository is the persistent tier of the geocode cache.
type GeocodeCacheRepository interface {
	Get(ctx context.Context, key string) (*GeocodeCacheEntry, error)
	Put(ctx context.Context, entry GeocodeCacheEntry) error
}
