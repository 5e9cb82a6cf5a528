package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"strays/internal/domain"
)

const LeaderboardSize = 10

// Overview is the admin statistics payload.
type Overview struct {
	TotalDonations   int                         `json:"total_donations"`
	TotalQuantity    int                         `json:"total_quantity"`
	TotalReports     int                         `json:"total_reports"`
	ReportsByStatus  map[domain.ReportStatus]int `json:"reports_by_status"`
	UsersByRole      map[domain.UserRole]int     `json:"users_by_role"`
	TotalUsers       int                         `json:"total_users"`
	UpcomingEvents   int                         `json:"upcoming_events"`
	FeedbackCount    int                         `json:"feedback_count"`
	FeedbackPolarity float64                     `json:"feedback_avg_polarity"`
	DonationSeries   []SeriesPoint               `json:"donation_series"`
	ReportSeries     []SeriesPoint               `json:"report_series"`
}

// Aggregator runs the dashboard queries concurrently.
type Aggregator struct {
	stats domain.AnalyticsRepository
	users domain.UserRepository
	now   func() time.Time
}

func NewAggregator(stats domain.AnalyticsRepository, users domain.UserRepository) *Aggregator {
	return &Aggregator{stats: stats, users: users, now: time.Now}
}

// Overview gathers totals, breakdowns and monthly series. The first failing
// query cancels the rest.
func (a *Aggregator) Overview(ctx context.Context) (*Overview, error) {
	var (
		summary         domain.Summary
		donationMonthly []domain.MonthlyCount
		reportMonthly   []domain.MonthlyCount
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary.Donations, err = a.stats.DonationTotals(ctx)
		return err
	})
	g.Go(func() (err error) {
		summary.ReportsByStatus, err = a.stats.ReportsByStatus(ctx)
		return err
	})
	g.Go(func() (err error) {
		summary.UsersByRole, err = a.stats.UsersByRole(ctx)
		return err
	})
	g.Go(func() (err error) {
		summary.UpcomingEvents, err = a.stats.UpcomingEvents(ctx, a.now())
		return err
	})
	g.Go(func() (err error) {
		summary.FeedbackCount, summary.FeedbackPolarity, err = a.stats.FeedbackSentiment(ctx)
		return err
	})
	g.Go(func() (err error) {
		donationMonthly, err = a.stats.DonationsByMonth(ctx)
		return err
	})
	g.Go(func() (err error) {
		reportMonthly, err = a.stats.ReportsByMonth(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, n := range summary.ReportsByStatus {
		summary.Reports += n
	}
	totalUsers := 0
	for _, n := range summary.UsersByRole {
		totalUsers += n
	}
	return &Overview{
		TotalDonations:   summary.Donations.Count,
		TotalQuantity:    summary.Donations.Quantity,
		TotalReports:     summary.Reports,
		ReportsByStatus:  summary.ReportsByStatus,
		UsersByRole:      summary.UsersByRole,
		TotalUsers:       totalUsers,
		UpcomingEvents:   summary.UpcomingEvents,
		FeedbackCount:    summary.FeedbackCount,
		FeedbackPolarity: summary.FeedbackPolarity,
		DonationSeries:   BuildSeries(donationMonthly),
		ReportSeries:     BuildSeries(reportMonthly),
	}, nil
}

// LeaderEntry is one leaderboard row.
type LeaderEntry struct {
	Rank     int             `json:"rank"`
	UserID   string          `json:"user_id"`
	Username string          `json:"username"`
	Role     domain.UserRole `json:"role"`
	Points   int             `json:"points"`
}

// Leaderboard returns the top users by points.
func (a *Aggregator) Leaderboard(ctx context.Context) ([]LeaderEntry, error) {
	users, err := a.users.Leaderboard(ctx, LeaderboardSize)
	if err != nil {
		return nil, err
	}
	out := make([]LeaderEntry, 0, len(users))
	for i, u := range users {
		out = append(out, LeaderEntry{Rank: i + 1, UserID: u.ID, Username: u.Username, Role: u.Role, Points: u.Points})
	}
	return out, nil
}
