package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"strays/internal/domain"
	"strays/internal/infra"
	"strays/internal/sqlinline"
)

const defaultReportLimit = 200

// ReportRepositoryPG implements ReportRepository using PostgreSQL.
type ReportRepositoryPG struct {
	db infra.SQLExecutor
}

func NewReportRepository(db infra.SQLExecutor) *ReportRepositoryPG {
	return &ReportRepositoryPG{db: db}
}

// Create inserts the report as pending and credits the reporter atomically.
func (r *ReportRepositoryPG) Create(ctx context.Context, rep *domain.Report, points int) error {
	lat, lng := splitPoint(rep.Point)
	row := r.db.QueryRow(ctx, sqlinline.QInsertReportAwardPoints,
		rep.ID, rep.ReporterID, rep.AnimalType, rep.Description, rep.Location, rep.Contact, rep.ImageKey,
		lat, lng, points,
	)
	if err := row.Scan(&rep.ReportTime, &rep.UpdatedAt, &rep.ReporterName); err != nil {
		return mapErr("insert report", err)
	}
	rep.Status = domain.ReportStatusPending
	return nil
}

func (r *ReportRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	rep, err := scanReport(r.db.QueryRow(ctx, sqlinline.QSelectReportByID, id))
	if err != nil {
		return nil, mapErr("select report", err)
	}
	return &rep, nil
}

// List returns reports newest first, filtered by animal type substring and status.
func (r *ReportRepositoryPG) List(ctx context.Context, f domain.ReportFilter) ([]domain.Report, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultReportLimit
	}
	return r.list(ctx, "list reports", sqlinline.QListReports, f.AnimalType, string(f.Status), limit)
}

// AnimalTypes returns the distinct animal types seen in reports.
func (r *ReportRepositoryPG) AnimalTypes(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, sqlinline.QReportAnimalTypes)
	if err != nil {
		return nil, mapErr("animal types", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, mapErr("animal types", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("animal types", err)
	}
	return types, nil
}

// UpdateStatus applies change only if the report is still in change.From. When
// no row matches, the report is re-read to tell a missing report from a
// concurrent status change.
func (r *ReportRepositoryPG) UpdateStatus(ctx context.Context, change domain.ReportStatusChange) (*domain.Report, error) {
	row := r.db.QueryRow(ctx, sqlinline.QUpdateReportStatus,
		change.ReportID, string(change.From), string(change.To), change.VolunteerID, change.PickupTime,
	)
	rep, err := scanReport(row)
	if err == nil {
		return &rep, nil
	}
	if !infra.IsNoRows(err) {
		return nil, mapErr("update report status", err)
	}
	current, getErr := r.GetByID(ctx, change.ReportID)
	if getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("update report status: %w: report is %s", domain.ErrConflict, current.Status)
}

func (r *ReportRepositoryPG) ListUnlocated(ctx context.Context, limit int) ([]domain.Report, error) {
	return r.list(ctx, "list unlocated reports", sqlinline.QListUnlocatedReports, limit)
}

func (r *ReportRepositoryPG) SetLocation(ctx context.Context, id string, p domain.Point) error {
	_, err := r.db.Exec(ctx, sqlinline.QSetReportLocation, id, p.Lat, p.Lng)
	return mapErr("set report location", err)
}

func (r *ReportRepositoryPG) list(ctx context.Context, op, query string, args ...any) ([]domain.Report, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	var items []domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		items = append(items, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return items, nil
}

func scanReport(row pgx.Row) (domain.Report, error) {
	var (
		rep      domain.Report
		lat, lng *float64
		status   string
	)
	err := row.Scan(&rep.ID, &rep.ReporterID, &rep.ReporterName, &rep.AnimalType, &rep.Description,
		&rep.Location, &rep.Contact, &rep.ImageKey, &lat, &lng, &status, &rep.VolunteerID,
		&rep.PickupTime, &rep.ReportTime, &rep.UpdatedAt)
	if err != nil {
		return rep, err
	}
	rep.Point = domain.PointPtr(lat, lng)
	rep.Status = domain.ReportStatus(status)
	return rep, nil
}
