package repo

import (
	"context"
	"time"

	"strays/internal/domain"
	"strays/internal/infra"
	"strays/internal/sqlinline"
)

// AnalyticsRepositoryPG implements AnalyticsRepository using PostgreSQL.
type AnalyticsRepositoryPG struct {
	db infra.SQLExecutor
}

// NewAnalyticsRepository constructs the repository.
func NewAnalyticsRepository(db infra.SQLExecutor) *AnalyticsRepositoryPG {
	return &AnalyticsRepositoryPG{db: db}
}

func (r *AnalyticsRepositoryPG) DonationTotals(ctx context.Context) (domain.DonationTotals, error) {
	var t domain.DonationTotals
	if err := r.db.QueryRow(ctx, sqlinline.QDonationTotals).Scan(&t.Count, &t.Quantity); err != nil {
		return t, mapErr("donation totals", err)
	}
	return t, nil
}

// DonationsByMonth buckets donations by pickup month; donations without a pickup time land in "Unknown".
func (r *AnalyticsRepositoryPG) DonationsByMonth(ctx context.Context) ([]domain.MonthlyCount, error) {
	return r.monthly(ctx, "donations by month", sqlinline.QDonationsByMonth)
}

func (r *AnalyticsRepositoryPG) ReportsByMonth(ctx context.Context) ([]domain.MonthlyCount, error) {
	return r.monthly(ctx, "reports by month", sqlinline.QReportsByMonth)
}

func (r *AnalyticsRepositoryPG) ReportsByStatus(ctx context.Context) (map[domain.ReportStatus]int, error) {
	counts, err := r.grouped(ctx, "reports by status", sqlinline.QReportsByStatus)
	if err != nil {
		return nil, err
	}
	out := map[domain.ReportStatus]int{
		domain.ReportStatusPending:  0,
		domain.ReportStatusAssigned: 0,
		domain.ReportStatusResolved: 0,
	}
	for k, v := range counts {
		out[domain.ReportStatus(k)] = v
	}
	return out, nil
}

func (r *AnalyticsRepositoryPG) UsersByRole(ctx context.Context) (map[domain.UserRole]int, error) {
	counts, err := r.grouped(ctx, "users by role", sqlinline.QUsersByRole)
	if err != nil {
		return nil, err
	}
	out := map[domain.UserRole]int{
		domain.UserRoleDonor:     0,
		domain.UserRoleVolunteer: 0,
		domain.UserRoleAdmin:     0,
	}
	for k, v := range counts {
		out[domain.UserRole(k)] = v
	}
	return out, nil
}

func (r *AnalyticsRepositoryPG) UpcomingEvents(ctx context.Context, now time.Time) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, sqlinline.QUpcomingEvents, now).Scan(&n); err != nil {
		return 0, mapErr("upcoming events", err)
	}
	return n, nil
}

func (r *AnalyticsRepositoryPG) FeedbackSentiment(ctx context.Context) (int, float64, error) {
	var (
		count int
		avg   float64
	)
	if err := r.db.QueryRow(ctx, sqlinline.QFeedbackSentiment).Scan(&count, &avg); err != nil {
		return 0, 0, mapErr("feedback sentiment", err)
	}
	return count, avg, nil
}

func (r *AnalyticsRepositoryPG) monthly(ctx context.Context, op, query string) ([]domain.MonthlyCount, error) {
	counts, err := r.grouped(ctx, op, query)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MonthlyCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, domain.MonthlyCount{Label: label, Count: n})
	}
	return out, nil
}

func (r *AnalyticsRepositoryPG) grouped(ctx context.Context, op, query string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, mapErr(op, err)
		}
		counts[key] += n
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return counts, nil
}
