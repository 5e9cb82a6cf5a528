// Package memory implements the repositories in process memory. It backs
// DATABASE_URL=memory:// for local runs and the HTTP tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"strays/internal/domain"
)

// Store holds every table behind one mutex.
type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	users        map[string]*domain.User
	donations    []*domain.Donation
	reports      []*domain.Report
	events       map[string]*domain.Event
	participants map[string]map[string]struct{}
	chat         []domain.ChatMessage
	feedback     []domain.Feedback
	geocode      map[string]domain.GeocodeCacheEntry
}

func New() *Store {
	return &Store{
		now:          func() time.Time { return time.Now().UTC() },
		users:        map[string]*domain.User{},
		events:       map[string]*domain.Event{},
		participants: map[string]map[string]struct{}{},
		geocode:      map[string]domain.GeocodeCacheEntry{},
	}
}

func (s *Store) Users() *Users { return &Users{s} }
func (s *Store) Donations() *Donations { return &Donations{s} }
func (s *Store) Reports() *Reports { return &Reports{s} }
func (s *Store) Events() *Events { return &Events{s} }
func (s *Store) Chat() *Chat { return &Chat{s} }
func (s *Store) Feedback() *Feedback { return &Feedback{s} }
func (s *Store) Analytics() *Analytics { return &Analytics{s} }
func (s *Store) GeocodeCache() *GeocodeCache { return &GeocodeCache{s} }

// Users implements domain.UserRepository.
type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Username, u.Username) || strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("insert user: %w", domain.ErrConflict)
		}
	}
	now := r.s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("select user: %w", domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("select user by username: %w", domain.ErrNotFound)
}

func (r *Users) UpdateProfile(_ context.Context, id, username, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("update profile: %w", domain.ErrNotFound)
	}
	for _, other := range r.s.users {
		if other.ID != id && (strings.EqualFold(other.Username, username) || strings.EqualFold(other.Email, email)) {
			return nil, fmt.Errorf("update profile: %w", domain.ErrConflict)
		}
	}
	u.Username, u.Email, u.UpdatedAt = username, email, r.s.now()
	cp := *u
	return &cp, nil
}

func (r *Users) SetRole(_ context.Context, id string, role domain.UserRole) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("update role: %w", domain.ErrNotFound)
	}
	u.Role, u.UpdatedAt = role, r.s.now()
	cp := *u
	return &cp, nil
}

func (r *Users) Leaderboard(_ context.Context, limit int) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Username < out[j].Username
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// credit must be called with the lock held.
func (s *Store) credit(userID string, points int) (*domain.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.Points += points
	u.UpdatedAt = s.now()
	return u, nil
}

// Donations implements domain.DonationRepository.
type Donations struct{ s *Store }

func (r *Donations) Create(_ context.Context, d *domain.Donation, points int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, err := r.s.credit(d.DonorID, points)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	d.DonorName = u.Username
	d.CreatedAt = r.s.now()
	cp := *d
	r.s.donations = append(r.s.donations, &cp)
	return nil
}

func (r *Donations) ListRecent(_ context.Context, limit int) ([]domain.Donation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Donation
	for i := len(r.s.donations) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *r.s.donations[i])
	}
	return out, nil
}

func (r *Donations) ListAll(_ context.Context) ([]domain.Donation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Donation, 0, len(r.s.donations))
	for _, d := range r.s.donations {
		out = append(out, *d)
	}
	return out, nil
}

func (r *Donations) ListUnlocated(_ context.Context, limit int) ([]domain.Donation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Donation
	for _, d := range r.s.donations {
		if d.Location == nil && d.PickupLocation != "" && len(out) < limit {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *Donations) SetLocation(_ context.Context, id string, p domain.Point) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.donations {
		if d.ID == id && d.Location == nil {
			d.Location = &p
		}
	}
	return nil
}

// Reports implements domain.ReportRepository.
type Reports struct{ s *Store }

func (r *Reports) Create(_ context.Context, rep *domain.Report, points int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, err := r.s.credit(rep.ReporterID, points)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	now := r.s.now()
	rep.ReporterName = u.Username
	rep.Status = domain.ReportStatusPending
	rep.ReportTime, rep.UpdatedAt = now, now
	cp := *rep
	r.s.reports = append(r.s.reports, &cp)
	return nil
}

func (r *Reports) find(id string) *domain.Report {
	for _, rep := range r.s.reports {
		if rep.ID == id {
			return rep
		}
	}
	return nil
}

func (r *Reports) GetByID(_ context.Context, id string) (*domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep := r.find(id)
	if rep == nil {
		return nil, fmt.Errorf("select report: %w", domain.ErrNotFound)
	}
	cp := *rep
	return &cp, nil
}

func (r *Reports) List(_ context.Context, f domain.ReportFilter) ([]domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	needle := strings.ToLower(f.AnimalType)
	var out []domain.Report
	for i := len(r.s.reports) - 1; i >= 0; i-- {
		rep := r.s.reports[i]
		if needle != "" && !strings.Contains(strings.ToLower(rep.AnimalType), needle) {
			continue
		}
		if f.Status != "" && rep.Status != f.Status {
			continue
		}
		out = append(out, *rep)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (r *Reports) AnimalTypes(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]struct{}{}
	var out []string
	for _, rep := range r.s.reports {
		if _, ok := seen[rep.AnimalType]; !ok {
			seen[rep.AnimalType] = struct{}{}
			out = append(out, rep.AnimalType)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *Reports) UpdateStatus(_ context.Context, c domain.ReportStatusChange) (*domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep := r.find(c.ReportID)
	if rep == nil {
		return nil, fmt.Errorf("update report status: %w", domain.ErrNotFound)
	}
	if rep.Status != c.From {
		return nil, fmt.Errorf("update report status: %w: report is %s", domain.ErrConflict, rep.Status)
	}
	rep.Status = c.To
	switch {
	case c.To == domain.ReportStatusPending:
		rep.VolunteerID = nil
	case c.VolunteerID != nil:
		v := *c.VolunteerID
		rep.VolunteerID = &v
	}
	if c.PickupTime != nil {
		t := *c.PickupTime
		rep.PickupTime = &t
	}
	rep.UpdatedAt = r.s.now()
	cp := *rep
	return &cp, nil
}

func (r *Reports) ListUnlocated(_ context.Context, limit int) ([]domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Report
	for _, rep := range r.s.reports {
		if rep.Point == nil && len(out) < limit {
			out = append(out, *rep)
		}
	}
	return out, nil
}

func (r *Reports) SetLocation(_ context.Context, id string, p domain.Point) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rep := r.find(id); rep != nil && rep.Point == nil {
		rep.Point = &p
	}
	return nil
}

// Events implements domain.EventRepository.
type Events struct{ s *Store }

func (r *Events) snapshot(e *domain.Event) *domain.Event {
	cp := *e
	cp.Participants = len(r.s.participants[e.ID])
	return &cp
}

func (r *Events) Create(_ context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	e.Status = domain.EventStatusScheduled
	e.CreatedAt, e.UpdatedAt = now, now
	cp := *e
	r.s.events[e.ID] = &cp
	return nil
}

func (r *Events) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, fmt.Errorf("select event: %w", domain.ErrNotFound)
	}
	return r.snapshot(e), nil
}

func (r *Events) List(_ context.Context, includeCancelled bool) ([]domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Event
	for _, e := range r.s.events {
		if includeCancelled || e.Status == domain.EventStatusScheduled {
			out = append(out, *r.snapshot(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventTime.Before(out[j].EventTime) })
	return out, nil
}

func (r *Events) Update(_ context.Context, upd *domain.Event) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[upd.ID]
	if !ok {
		return nil, fmt.Errorf("update event: %w", domain.ErrNotFound)
	}
	e.Title, e.Description, e.Location, e.EventTime = upd.Title, upd.Description, upd.Location, upd.EventTime
	e.UpdatedAt = r.s.now()
	return r.snapshot(e), nil
}

func (r *Events) Cancel(_ context.Context, id string) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, fmt.Errorf("cancel event: %w", domain.ErrNotFound)
	}
	e.Status = domain.EventStatusCancelled
	e.UpdatedAt = r.s.now()
	return r.snapshot(e), nil
}

func (r *Events) AddParticipant(_ context.Context, eventID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok {
		return false, fmt.Errorf("add participant: %w", domain.ErrNotFound)
	}
	if e.Status != domain.EventStatusScheduled {
		return false, fmt.Errorf("add participant: event is cancelled: %w", domain.ErrConflict)
	}
	set := r.s.participants[eventID]
	if set == nil {
		set = map[string]struct{}{}
		r.s.participants[eventID] = set
	}
	if _, ok := set[userID]; ok {
		return false, nil
	}
	set[userID] = struct{}{}
	return true, nil
}

// Chat implements domain.ChatRepository.
type Chat struct{ s *Store }

func (r *Chat) Append(_ context.Context, msg *domain.ChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg.CreatedAt = r.s.now()
	r.s.chat = append(r.s.chat, *msg)
	return nil
}

func (r *Chat) History(_ context.Context, channel string, before time.Time, limit int) ([]domain.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.ChatMessage
	for i := len(r.s.chat) - 1; i >= 0 && len(out) < limit; i-- {
		m := r.s.chat[i]
		if m.Channel == channel && (before.IsZero() || m.CreatedAt.Before(before)) {
			out = append(out, m)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Feedback implements domain.FeedbackRepository.
type Feedback struct{ s *Store }

func (r *Feedback) Create(_ context.Context, fb *domain.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	fb.SubmittedAt = r.s.now()
	if fb.UserID != nil {
		if u, ok := r.s.users[*fb.UserID]; ok {
			fb.Username = u.Username
		}
	}
	r.s.feedback = append(r.s.feedback, *fb)
	return nil
}

func (r *Feedback) ListRecent(_ context.Context, limit int) ([]domain.Feedback, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Feedback
	for i := len(r.s.feedback) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.s.feedback[i])
	}
	return out, nil
}

// Analytics implements domain.AnalyticsRepository.
type Analytics struct{ s *Store }

func (r *Analytics) DonationTotals(_ context.Context) (domain.DonationTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := domain.DonationTotals{Count: len(r.s.donations)}
	for _, d := range r.s.donations {
		t.Quantity += d.Quantity
	}
	return t, nil
}

func (r *Analytics) DonationsByMonth(_ context.Context) ([]domain.MonthlyCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int{}
	for _, d := range r.s.donations {
		label := "Unknown"
		if d.PickupTime != nil {
			label = d.PickupTime.UTC().Format("2006-01")
		}
		counts[label]++
	}
	return toMonthly(counts), nil
}

func (r *Analytics) ReportsByMonth(_ context.Context) ([]domain.MonthlyCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int{}
	for _, rep := range r.s.reports {
		counts[rep.ReportTime.UTC().Format("2006-01")]++
	}
	return toMonthly(counts), nil
}

func (r *Analytics) ReportsByStatus(_ context.Context) (map[domain.ReportStatus]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[domain.ReportStatus]int{
		domain.ReportStatusPending:  0,
		domain.ReportStatusAssigned: 0,
		domain.ReportStatusResolved: 0,
	}
	for _, rep := range r.s.reports {
		out[rep.Status]++
	}
	return out, nil
}

func (r *Analytics) UsersByRole(_ context.Context) (map[domain.UserRole]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[domain.UserRole]int{
		domain.UserRoleDonor:     0,
		domain.UserRoleVolunteer: 0,
		domain.UserRoleAdmin:     0,
	}
	for _, u := range r.s.users {
		out[u.Role]++
	}
	return out, nil
}

func (r *Analytics) UpcomingEvents(_ context.Context, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, e := range r.s.events {
		if e.Status == domain.EventStatusScheduled && !e.EventTime.Before(now) {
			n++
		}
	}
	return n, nil
}

func (r *Analytics) FeedbackSentiment(_ context.Context) (int, float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.feedback) == 0 {
		return 0, 0, nil
	}
	sum := 0.0
	for _, fb := range r.s.feedback {
		sum += fb.Polarity
	}
	return len(r.s.feedback), sum / float64(len(r.s.feedback)), nil
}

func toMonthly(counts map[string]int) []domain.MonthlyCount {
	out := make([]domain.MonthlyCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, domain.MonthlyCount{Label: label, Count: n})
	}
	return out
}

// GeocodeCache implements domain.GeocodeCacheRepository.
type GeocodeCache struct{ s *Store }

func (r *GeocodeCache) Get(_ context.Context, key string) (*domain.GeocodeCacheEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.geocode[key]
	if !ok {
		return nil, fmt.Errorf("select geocode cache: %w", domain.ErrNotFound)
	}
	return &e, nil
}

func (r *GeocodeCache) Put(_ context.Context, e domain.GeocodeCacheEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.UpdatedAt = r.s.now()
	r.s.geocode[e.Key] = e
	return nil
}

var (
	_ domain.UserRepository         = (*Users)(nil)
	_ domain.DonationRepository     = (*Donations)(nil)
	_ domain.ReportRepository       = (*Reports)(nil)
	_ domain.EventRepository        = (*Events)(nil)
	_ domain.ChatRepository         = (*Chat)(nil)
	_ domain.FeedbackRepository     = (*Feedback)(nil)
	_ domain.AnalyticsRepository    = (*Analytics)(nil)
	_ domain.GeocodeCacheRepository = (*GeocodeCache)(nil)
)
