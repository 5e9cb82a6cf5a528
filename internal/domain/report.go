package domain

import (
	"fmt"
	"math"
	"time"
)

// ReportStatus enumerates sighting report lifecycle states.
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusAssigned ReportStatus = "assigned"
	ReportStatusResolved ReportStatus = "resolved"
)

var reportTransitions = map[ReportStatus][]ReportStatus{
	ReportStatusPending:  {ReportStatusAssigned, ReportStatusResolved},
	ReportStatusAssigned: {ReportStatusPending, ReportStatusResolved},
}

// ParseReportStatus validates a status string.
func ParseReportStatus(s string) (ReportStatus, error) {
	switch ReportStatus(s) {
	case ReportStatusPending, ReportStatusAssigned, ReportStatusResolved:
		return ReportStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// CanTransition reports whether a report may move from one status to another.
func (s ReportStatus) CanTransition(to ReportStatus) bool {
	for _, next := range reportTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Report is a stray animal sighting submitted by a user.
type Report struct {
	ID           string
	ReporterID   string
	ReporterName string
	AnimalType   string
	Description  string
	Location     string
	Contact      string
	ImageKey     string
	Point        *Point
	Status       ReportStatus
	VolunteerID  *string
	PickupTime   *time.Time
	ReportTime   time.Time
	UpdatedAt    time.Time
}

// ReportLimitAll as ReportFilter.Limit returns every matching report.
const ReportLimitAll = math.MaxInt32

// ReportFilter narrows report listings. A zero Limit applies the repository default.
type ReportFilter struct {
	AnimalType string
	Status     ReportStatus
	Limit      int
}

// ReportStatusChange describes a requested lifecycle move.
type ReportStatusChange struct {
	ReportID    string
	From        ReportStatus
	To          ReportStatus
	VolunteerID *string
	PickupTime  *time.Time
}
