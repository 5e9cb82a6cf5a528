package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"strays/internal/domain"
	"strays/internal/infra"
	"strays/internal/sqlinline"
)

// DonationRepositoryPG implements DonationRepository using PostgreSQL.
type DonationRepositoryPG struct {
	db infra.SQLExecutor
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(db infra.SQLExecutor) *DonationRepositoryPG {
	return &DonationRepositoryPG{db: db}
}

// Create inserts the donation and credits the donor with points atomically.
func (r *DonationRepositoryPG) Create(ctx context.Context, d *domain.Donation, points int) error {
	lat, lng := splitPoint(d.Location)
	row := r.db.QueryRow(ctx, sqlinline.QInsertDonationAwardPoints,
		d.ID, d.DonorID, d.Description, d.FoodType, d.Quantity, d.PickupLocation, d.PickupTime,
		lat, lng, points,
	)
	if err := row.Scan(&d.CreatedAt, &d.DonorName); err != nil {
		return mapErr("insert donation", err)
	}
	return nil
}

// ListRecent returns recent donations limited by the input value.
func (r *DonationRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.Donation, error) {
	return r.list(ctx, "list donations", sqlinline.QListRecentDonations, limit)
}

func (r *DonationRepositoryPG) ListAll(ctx context.Context) ([]domain.Donation, error) {
	return r.list(ctx, "list all donations", sqlinline.QListAllDonations)
}

// ListUnlocated returns donations with a pickup location but no coordinates yet.
func (r *DonationRepositoryPG) ListUnlocated(ctx context.Context, limit int) ([]domain.Donation, error) {
	return r.list(ctx, "list unlocated donations", sqlinline.QListUnlocatedDonations, limit)
}

// SetLocation fills in coordinates once; already located donations are left untouched.
func (r *DonationRepositoryPG) SetLocation(ctx context.Context, id string, p domain.Point) error {
	_, err := r.db.Exec(ctx, sqlinline.QSetDonationLocation, id, p.Lat, p.Lng)
	return mapErr("set donation location", err)
}

func (r *DonationRepositoryPG) list(ctx context.Context, op, query string, args ...any) ([]domain.Donation, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return items, nil
}

func scanDonation(row pgx.Row) (domain.Donation, error) {
	var (
		d        domain.Donation
		lat, lng *float64
	)
	err := row.Scan(&d.ID, &d.DonorID, &d.DonorName, &d.Description, &d.FoodType, &d.Quantity,
		&d.PickupLocation, &d.PickupTime, &lat, &lng, &d.CreatedAt)
	if err != nil {
		return d, err
	}
	d.Location = domain.PointPtr(lat, lng)
	return d, nil
}

func splitPoint(p *domain.Point) (*float64, *float64) {
	if p == nil {
		return nil, nil
	}
	lat, lng := p.Lat, p.Lng
	return &lat, &lng
}
