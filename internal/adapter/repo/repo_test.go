package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"strays/internal/domain"
	"strays/internal/sqlinline"
)

func ptr[T any](v T) *T { return &v }

func TestUserCreateMapsUniqueViolation(t *testing.T) {
	db := newStubExecutor()
	db.rowErr[sqlinline.QInsertUser] = &pgconn.PgError{Code: "23505"}
	repo := NewUserRepository(db)

	err := repo.Create(context.Background(), &domain.User{ID: "u1", Username: "asha", Role: domain.UserRoleDonor})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUserGetByIDNotFound(t *testing.T) {
	repo := NewUserRepository(newStubExecutor())
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReportGetByIDMalformedID(t *testing.T) {
	db := newStubExecutor()
	db.rowErr[sqlinline.QSelectReportByID] = &pgconn.PgError{Code: "22P02"}
	repo := NewReportRepository(db)
	if _, err := repo.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeaderboardScansUsers(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	db := newStubExecutor()
	db.rows[sqlinline.QLeaderboard] = [][]any{
		{"u1", "asha", "a@example.com", "hash", "volunteer", 30, now, now},
		{"u2", "ravi", "r@example.com", "hash", "donor", 10, now, now},
	}
	users, err := NewUserRepository(db).Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("Leaderboard error: %v", err)
	}
	if len(users) != 2 || users[0].Role != domain.UserRoleVolunteer || users[0].Points != 30 {
		t.Fatalf("unexpected users: %+v", users)
	}
	if got := db.calls[0].args[0]; got != 10 {
		t.Fatalf("limit arg = %v, want 10", got)
	}
}

func TestDonationCreatePassesPointsAndCoordinates(t *testing.T) {
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	db := newStubExecutor()
	db.rows[sqlinline.QInsertDonationAwardPoints] = [][]any{{created, "asha"}}

	d := &domain.Donation{ID: "d1", DonorID: "u1", Description: "rice", Quantity: 3, Location: &domain.Point{Lat: 12.9, Lng: 77.6}}
	if err := NewDonationRepository(db).Create(context.Background(), d, domain.DonationPoints); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !d.CreatedAt.Equal(created) || d.DonorName != "asha" {
		t.Fatalf("returned columns not applied: %+v", d)
	}
	args := db.calls[0].args
	if len(args) != 10 || args[9] != domain.DonationPoints {
		t.Fatalf("unexpected args: %#v", args)
	}
	if lat, ok := args[7].(*float64); !ok || *lat != 12.9 {
		t.Fatalf("latitude arg = %#v", args[7])
	}
}

func TestDonationListNullCoordinates(t *testing.T) {
	created := time.Now().UTC()
	db := newStubExecutor()
	db.rows[sqlinline.QListRecentDonations] = [][]any{
		{"d1", "u1", "asha", "rice", "cooked", 2, "MG Road", nil, nil, nil, created},
		{"d2", "u1", "asha", "kibble", "dry", 1, "12.9,77.6", ptr(created), ptr(12.9), ptr(77.6), created},
	}
	items, err := NewDonationRepository(db).ListRecent(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListRecent error: %v", err)
	}
	if items[0].Location != nil || items[0].PickupTime != nil {
		t.Fatalf("expected nil optional fields, got %+v", items[0])
	}
	if items[1].Location == nil || items[1].Location.Lng != 77.6 {
		t.Fatalf("expected coordinates, got %+v", items[1].Location)
	}
}

func TestReportUpdateStatusConflict(t *testing.T) {
	now := time.Now().UTC()
	db := newStubExecutor()
	db.rows[sqlinline.QSelectReportByID] = [][]any{
		{"r1", "u1", "asha", "dog", "limping", "MG Road", "999", "", nil, nil, "resolved", nil, nil, now, now},
	}
	_, err := NewReportRepository(db).UpdateStatus(context.Background(), domain.ReportStatusChange{
		ReportID: "r1", From: domain.ReportStatusPending, To: domain.ReportStatusAssigned,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestReportUpdateStatusMissing(t *testing.T) {
	_, err := NewReportRepository(newStubExecutor()).UpdateStatus(context.Background(), domain.ReportStatusChange{
		ReportID: "nope", From: domain.ReportStatusPending, To: domain.ReportStatusResolved,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReportListDefaultsLimit(t *testing.T) {
	db := newStubExecutor()
	if _, err := NewReportRepository(db).List(context.Background(), domain.ReportFilter{AnimalType: "dog"}); err != nil {
		t.Fatalf("List error: %v", err)
	}
	args := db.calls[0].args
	if args[0] != "dog" || args[1] != "" || args[2] != defaultReportLimit {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestAddParticipantReportsDuplicates(t *testing.T) {
	db := newStubExecutor()
	repo := NewEventRepository(db)
	scheduled := string(domain.EventStatusScheduled)

	db.rows[sqlinline.QInsertEventParticipant] = [][]any{{&scheduled, true}}
	joined, err := repo.AddParticipant(context.Background(), "e1", "u1")
	if err != nil || !joined {
		t.Fatalf("first signup: joined=%v err=%v", joined, err)
	}

	db.rows[sqlinline.QInsertEventParticipant] = [][]any{{&scheduled, false}}
	joined, err = repo.AddParticipant(context.Background(), "e1", "u1")
	if err != nil || joined {
		t.Fatalf("repeat signup: joined=%v err=%v", joined, err)
	}
}

func TestAddParticipantRejectsCancelledEvent(t *testing.T) {
	db := newStubExecutor()
	repo := NewEventRepository(db)
	cancelled := string(domain.EventStatusCancelled)

	db.rows[sqlinline.QInsertEventParticipant] = [][]any{{&cancelled, false}}
	joined, err := repo.AddParticipant(context.Background(), "e1", "u1")
	if !errors.Is(err, domain.ErrConflict) || joined {
		t.Fatalf("cancelled event: joined=%v err=%v", joined, err)
	}

	db.rows[sqlinline.QInsertEventParticipant] = [][]any{{nil, false}}
	_, err = repo.AddParticipant(context.Background(), "missing", "u1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing event: err=%v", err)
	}
}

func TestChatHistoryReturnsOldestFirst(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	db := newStubExecutor()
	db.rows[sqlinline.QChatHistory] = [][]any{
		{"m2", "volunteers", "u1", "asha", "second", t2},
		{"m1", "volunteers", "u1", "asha", "first", t1},
	}
	msgs, err := NewChatRepository(db).History(context.Background(), "volunteers", time.Time{}, 50)
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != "m1" || msgs[1].ID != "m2" {
		t.Fatalf("unexpected order: %+v", msgs)
	}
	if before, ok := db.calls[0].args[1].(time.Time); !ok || before.IsZero() {
		t.Fatalf("expected non-zero before cursor, got %#v", db.calls[0].args[1])
	}
}

func TestAnalyticsStatusBreakdownFillsMissing(t *testing.T) {
	db := newStubExecutor()
	db.rows[sqlinline.QReportsByStatus] = [][]any{{"pending", 4}}
	got, err := NewAnalyticsRepository(db).ReportsByStatus(context.Background())
	if err != nil {
		t.Fatalf("ReportsByStatus error: %v", err)
	}
	if got[domain.ReportStatusPending] != 4 || got[domain.ReportStatusResolved] != 0 || len(got) != 3 {
		t.Fatalf("unexpected breakdown: %#v", got)
	}
}

func TestGeocodeCacheMiss(t *testing.T) {
	_, err := NewGeocodeCacheRepository(newStubExecutor()).Get(context.Background(), "in|mg road")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
