package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"strays/internal/domain"
	"strays/internal/geocode"
	"strays/internal/intake"
)

const maxReportList = 500

type reportRequest struct {
	AnimalType  string `json:"animal_type"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Contact     string `json:"contact"`
}

type statusRequest struct {
	Status      string `json:"status"`
	VolunteerID string `json:"volunteer_id"`
	PickupTime  string `json:"pickup_time"`
}

type reportDTO struct {
	ID          string              `json:"id"`
	ReporterID  string              `json:"reporter_id"`
	Reporter    string              `json:"reporter"`
	AnimalType  string              `json:"animal_type"`
	Description string              `json:"description"`
	Location    string              `json:"location"`
	Contact     string              `json:"contact"`
	ImageURL    string              `json:"image_url,omitempty"`
	Point       *domain.Point       `json:"point"`
	Status      domain.ReportStatus `json:"status"`
	VolunteerID *string             `json:"volunteer_id"`
	PickupTime  *time.Time          `json:"pickup_time"`
	ReportTime  time.Time           `json:"report_time"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (a *App) toReportDTO(rep domain.Report) reportDTO {
	dto := reportDTO{
		ID:          rep.ID,
		ReporterID:  rep.ReporterID,
		Reporter:    rep.ReporterName,
		AnimalType:  rep.AnimalType,
		Description: rep.Description,
		Location:    rep.Location,
		Contact:     rep.Contact,
		Point:       rep.Point,
		Status:      rep.Status,
		VolunteerID: rep.VolunteerID,
		PickupTime:  rep.PickupTime,
		ReportTime:  rep.ReportTime,
		UpdatedAt:   rep.UpdatedAt,
	}
	if rep.ImageKey != "" && a.Files != nil {
		dto.ImageURL = a.Files.URL(rep.ImageKey)
	}
	return dto
}

// ReportsCreate accepts either a multipart form with an optional "image" file
// or a JSON body.
func (a *App) ReportsCreate(w http.ResponseWriter, r *http.Request) {
	reporter, ok := a.actor(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	var in intake.ReportInput
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		limit := a.MaxUpload
		if limit <= 0 {
			limit = 5 << 20
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit+maxJSONBody)
		if err := r.ParseMultipartForm(limit); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				a.error(w, http.StatusRequestEntityTooLarge, "too_large", "upload too large")
				return
			}
			a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()
		in = intake.ReportInput{
			AnimalType:  r.FormValue("animal_type"),
			Description: r.FormValue("description"),
			Location:    r.FormValue("location"),
			Contact:     r.FormValue("contact"),
		}
		file, header, err := r.FormFile("image")
		switch {
		case err == nil:
			defer file.Close()
			in.Image = &intake.Upload{Filename: header.Filename, Body: file}
		case !errors.Is(err, http.ErrMissingFile):
			a.error(w, http.StatusBadRequest, "bad_request", "invalid image upload")
			return
		}
	} else {
		var req reportRequest
		if !a.decode(w, r, &req) {
			return
		}
		in = intake.ReportInput{
			AnimalType:  req.AnimalType,
			Description: req.Description,
			Location:    req.Location,
			Contact:     req.Contact,
		}
	}

	rep, err := a.Intake.SubmitReport(r.Context(), reporter, in, a.country(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"report":        a.toReportDTO(*rep),
		"points_earned": domain.ReportPoints,
	})
}

// ReportsList supports animal_type, status, limit and near=lat,lng with radius_km.
func (a *App) ReportsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := intake.ReportQuery{
		AnimalType: q.Get("animal_type"),
		Limit:      queryInt(r, "limit", 0, maxReportList),
	}
	if s := strings.TrimSpace(q.Get("status")); s != "" {
		status, err := domain.ParseReportStatus(s)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		query.Status = status
	}
	if near := strings.TrimSpace(q.Get("near")); near != "" {
		p, ok := geocode.ParseCoordinates(near)
		if !ok {
			a.error(w, http.StatusBadRequest, "bad_request", "near must be lat,lng")
			return
		}
		radius, err := strconv.ParseFloat(q.Get("radius_km"), 64)
		if err != nil || radius <= 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "radius_km must be a positive number")
			return
		}
		query.Near, query.RadiusKm = &p, radius
	}

	reports, err := a.Intake.ListReports(r.Context(), query)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]reportDTO, 0, len(reports))
	for _, rep := range reports {
		items = append(items, a.toReportDTO(rep))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) ReportGet(w http.ResponseWriter, r *http.Request) {
	rep, err := a.Reports.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.toReportDTO(*rep))
}

func (a *App) ReportsMap(w http.ResponseWriter, r *http.Request) {
	m, err := a.Maps.Reports(r.Context(), r.URL.Query().Get("animal_type"), a.country(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, m)
}

func (a *App) ReportStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !a.decode(w, r, &req) {
		return
	}
	status, err := domain.ParseReportStatus(strings.TrimSpace(req.Status))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	pickup, err := parseOptionalTime(req.PickupTime)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	actor, ok := a.actor(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	if req.VolunteerID != "" {
		if _, err := a.Users.GetByID(r.Context(), req.VolunteerID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				a.error(w, http.StatusBadRequest, "bad_request", "volunteer not found")
				return
			}
			a.fail(w, r, err)
			return
		}
	}
	rep, err := a.Intake.ChangeReportStatus(r.Context(), actor, chi.URLParam(r, "id"), intake.StatusUpdate{
		Status:      status,
		VolunteerID: req.VolunteerID,
		PickupTime:  pickup,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.toReportDTO(*rep))
}
