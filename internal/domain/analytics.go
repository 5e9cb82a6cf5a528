package domain

// MonthlyCount is one bucket of a monthly series. Label is YYYY-MM or "Unknown".
type MonthlyCount struct {
	Label string
	Count int
}

// DonationTotals summarises all donations.
type DonationTotals struct {
	Count    int
	Quantity int
}

// Summary aggregates headline dashboard numbers.
type Summary struct {
	Donations        DonationTotals
	Reports          int
	ReportsByStatus  map[ReportStatus]int
	UsersByRole      map[UserRole]int
	UpcomingEvents   int
	FeedbackCount    int
	FeedbackPolarity float64
}
