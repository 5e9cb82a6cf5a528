// Package intake accepts donations and sighting reports: it validates them,
// resolves their location, stores them with the contributor's points and
// announces them.
package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"strays/internal/chat"
	"strays/internal/domain"
	"strays/internal/geocode"
	"strays/internal/notify"
	"strays/internal/storage"
)

// Locator resolves free text or "lat,lng" to a point.
type Locator interface {
	Resolve(ctx context.Context, q, country string) (geocode.Result, error)
}

// Notifier queues notifications for asynchronous delivery.
type Notifier interface {
	Enqueue(n notify.Notification) bool
}

// FileWriter stores uploaded files.
type FileWriter interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID       string
	Username string
	Role     domain.UserRole
}

// Service implements the intake pipeline.
type Service struct {
	donations domain.DonationRepository
	reports   domain.ReportRepository
	locator   Locator
	files     FileWriter
	notifier  Notifier
	logger    zerolog.Logger
	maxUpload int64
}

func NewService(donations domain.DonationRepository, reports domain.ReportRepository, locator Locator, files FileWriter, notifier Notifier, maxUpload int64, logger zerolog.Logger) *Service {
	return &Service{
		donations: donations,
		reports:   reports,
		locator:   locator,
		files:     files,
		notifier:  notifier,
		logger:    logger,
		maxUpload: maxUpload,
	}
}

// DonationInput is a donation submission.
type DonationInput struct {
	Description    string
	FoodType       string
	Quantity       int
	PickupLocation string
	PickupTime     *time.Time
}

// SubmitDonation stores a donation and credits the donor. A geocoding failure
// leaves the donation without coordinates for the backfill worker.
func (s *Service) SubmitDonation(ctx context.Context, donor Actor, in DonationInput, country string) (*domain.Donation, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.PickupLocation = strings.TrimSpace(in.PickupLocation)
	in.FoodType = CanonicalLabel(in.FoodType)
	if err := validateDonation(in); err != nil {
		return nil, err
	}

	d := &domain.Donation{
		ID:             uuid.NewString(),
		DonorID:        donor.ID,
		DonorName:      donor.Username,
		Description:    in.Description,
		FoodType:       in.FoodType,
		Quantity:       in.Quantity,
		PickupLocation: in.PickupLocation,
		PickupTime:     in.PickupTime,
		Location:       s.locate(ctx, in.PickupLocation, country),
	}
	if err := s.donations.Create(ctx, d, domain.DonationPoints); err != nil {
		return nil, err
	}

	s.notifier.Enqueue(notify.Notification{
		Kind:    notify.KindNotification,
		UserID:  donor.ID,
		Title:   "New Donation",
		Message: fmt.Sprintf("Thank you for donating %s! You earned %d points.", d.Description, domain.DonationPoints),
		Data:    map[string]any{"donation_id": d.ID, "points": domain.DonationPoints},
	})
	s.notifier.Enqueue(notify.Notification{
		Kind:    notify.KindNotification,
		Channel: chat.TopicAnnouncements,
		Title:   "New Donation",
		Message: "New donation added: " + d.Description,
		Data:    map[string]any{"donation_id": d.ID, "location": d.Location},
	})
	return d, nil
}

// Upload is an image attached to a report.
type Upload struct {
	Filename string
	Body     io.Reader
}

// ReportInput is a sighting report submission.
type ReportInput struct {
	AnimalType  string
	Description string
	Location    string
	Contact     string
	Image       *Upload
}

// SubmitReport stores a report as pending, credits the reporter and raises a
// proximity alert for volunteers.
func (s *Service) SubmitReport(ctx context.Context, reporter Actor, in ReportInput, country string) (*domain.Report, error) {
	in.AnimalType = CanonicalLabel(in.AnimalType)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.Contact = strings.TrimSpace(in.Contact)
	if err := validateReport(in); err != nil {
		return nil, err
	}

	r := &domain.Report{
		ID:          uuid.NewString(),
		ReporterID:  reporter.ID,
		AnimalType:  in.AnimalType,
		Description: in.Description,
		Location:    in.Location,
		Contact:     in.Contact,
		Status:      domain.ReportStatusPending,
	}
	if in.Image != nil {
		key, err := s.storeImage(ctx, r.ID, in.Image)
		if err != nil {
			return nil, err
		}
		r.ImageKey = key
	}
	r.Point = s.locate(ctx, in.Location, country)

	if err := s.reports.Create(ctx, r, domain.ReportPoints); err != nil {
		if r.ImageKey != "" {
			if derr := s.files.Delete(context.WithoutCancel(ctx), r.ImageKey); derr != nil {
				s.logger.Warn().Err(derr).Str("key", r.ImageKey).Msg("orphaned report image not removed")
			}
		}
		return nil, err
	}

	s.notifier.Enqueue(notify.Notification{
		Kind:    notify.KindNotification,
		UserID:  reporter.ID,
		Title:   "New Report",
		Message: fmt.Sprintf("Thanks for reporting a %s at %s. You earned %d points.", r.AnimalType, r.Location, domain.ReportPoints),
		Data:    map[string]any{"report_id": r.ID, "points": domain.ReportPoints},
	})
	alert := map[string]any{
		"report_id":   r.ID,
		"animal_type": r.AnimalType,
		"location":    r.Location,
	}
	if r.Point != nil {
		alert["lat"] = r.Point.Lat
		alert["lng"] = r.Point.Lng
	}
	s.notifier.Enqueue(notify.Notification{
		Kind:    notify.KindAlert,
		Channel: chat.TopicAlerts,
		Title:   "Stray sighting",
		Message: fmt.Sprintf("%s reported near %s", r.AnimalType, r.Location),
		Data:    alert,
	})
	return r, nil
}

// StatusUpdate is a requested report lifecycle move.
type StatusUpdate struct {
	Status      domain.ReportStatus
	VolunteerID string
	PickupTime  *time.Time
}

// ChangeReportStatus moves a report through its lifecycle. Only volunteers
// and admins may do so; assigning without a volunteer assigns the actor.
func (s *Service) ChangeReportStatus(ctx context.Context, actor Actor, reportID string, upd StatusUpdate) (*domain.Report, error) {
	if !(domain.User{Role: actor.Role}).CanHandleReports() {
		return nil, fmt.Errorf("%w: only volunteers and admins can update reports", domain.ErrForbidden)
	}
	current, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(upd.Status) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, current.Status, upd.Status)
	}

	change := domain.ReportStatusChange{
		ReportID:   reportID,
		From:       current.Status,
		To:         upd.Status,
		PickupTime: upd.PickupTime,
	}
	if upd.Status == domain.ReportStatusAssigned {
		volunteer := strings.TrimSpace(upd.VolunteerID)
		if volunteer == "" {
			volunteer = actor.ID
		}
		change.VolunteerID = &volunteer
	}
	updated, err := s.reports.UpdateStatus(ctx, change)
	if err != nil {
		return nil, err
	}

	s.notifier.Enqueue(notify.Notification{
		Kind:    notify.KindNotification,
		UserID:  updated.ReporterID,
		Title:   "Report Update",
		Message: fmt.Sprintf("Your %s report is now %s.", updated.AnimalType, updated.Status),
		Data:    map[string]any{"report_id": updated.ID, "status": updated.Status},
	})
	if change.VolunteerID != nil && *change.VolunteerID != actor.ID {
		s.notifier.Enqueue(notify.Notification{
			Kind:    notify.KindNotification,
			UserID:  *change.VolunteerID,
			Title:   "Report Assigned",
			Message: fmt.Sprintf("You were assigned a %s report at %s.", updated.AnimalType, updated.Location),
			Data:    map[string]any{"report_id": updated.ID},
		})
	}
	return updated, nil
}

// ReportQuery filters report listings. Near and RadiusKm apply together.
type ReportQuery struct {
	AnimalType string
	Status     domain.ReportStatus
	Near       *domain.Point
	RadiusKm   float64
	Limit      int
}

// ListReports returns matching reports newest first. With a radius filter,
// reports without coordinates are excluded.
func (s *Service) ListReports(ctx context.Context, q ReportQuery) ([]domain.Report, error) {
	reports, err := s.reports.List(ctx, domain.ReportFilter{
		AnimalType: strings.TrimSpace(q.AnimalType),
		Status:     q.Status,
		Limit:      q.Limit,
	})
	if err != nil {
		return nil, err
	}
	if q.Near == nil || q.RadiusKm <= 0 {
		return reports, nil
	}
	out := reports[:0]
	for _, r := range reports {
		if r.Point != nil && domain.DistanceKm(*q.Near, *r.Point) <= q.RadiusKm {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) locate(ctx context.Context, q, country string) *domain.Point {
	if s.locator == nil || strings.TrimSpace(q) == "" {
		return nil
	}
	res, err := s.locator.Resolve(ctx, q, country)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			s.logger.Info().Str("location", q).Msg("location not found")
		} else {
			s.logger.Warn().Err(err).Str("location", q).Msg("geocode failed")
		}
		return nil
	}
	p := res.Point
	return &p
}

func (s *Service) storeImage(ctx context.Context, reportID string, up *Upload) (string, error) {
	key, err := storage.ImageKey("reports/"+reportID, up.Filename)
	if err != nil {
		return "", fmt.Errorf("%w: image must be png, jpg, jpeg or gif", domain.ErrInvalidInput)
	}
	limit := s.maxUpload
	if limit <= 0 {
		limit = 5 << 20
	}
	data, err := io.ReadAll(io.LimitReader(up.Body, limit+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidInput, limit)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: image is empty", domain.ErrInvalidInput)
	}
	return s.files.Write(ctx, key, data)
}

func validateDonation(in DonationInput) error {
	var problems []string
	problems = checkText(problems, "description", in.Description, true, 200)
	problems = checkText(problems, "food_type", in.FoodType, false, 50)
	problems = checkText(problems, "pickup_location", in.PickupLocation, false, 200)
	if in.Quantity < 0 {
		problems = append(problems, "quantity must not be negative")
	}
	return joinProblems(problems)
}

func validateReport(in ReportInput) error {
	var problems []string
	problems = checkText(problems, "animal_type", in.AnimalType, true, 50)
	problems = checkText(problems, "description", in.Description, true, 200)
	problems = checkText(problems, "location", in.Location, true, 200)
	problems = checkText(problems, "contact", in.Contact, true, 100)
	return joinProblems(problems)
}

func checkText(problems []string, field, value string, required bool, max int) []string {
	n := utf8.RuneCountInString(value)
	switch {
	case required && n == 0:
		return append(problems, field+" is required")
	case n > max:
		return append(problems, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return problems
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
}
