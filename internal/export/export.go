// Package export renders donations and reports as CSV and bundles them for
// administrators.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"strays/internal/domain"
	"strays/pkg/zip"
)

var (
	donationHeader = []string{"id", "donor_id", "donor", "description", "food_type", "quantity", "pickup_location", "pickup_time", "latitude", "longitude", "created_at"}
	reportHeader   = []string{"id", "reporter_id", "reporter", "animal_type", "description", "location", "contact", "status", "volunteer_id", "latitude", "longitude", "image", "report_time", "updated_at"}
)

func DonationsCSV(donations []domain.Donation) ([]byte, error) {
	rows := make([][]string, 0, len(donations))
	for _, d := range donations {
		lat, lng := point(d.Location)
		rows = append(rows, []string{
			d.ID, d.DonorID, d.DonorName, d.Description, d.FoodType,
			strconv.Itoa(d.Quantity), d.PickupLocation, timestamp(d.PickupTime),
			lat, lng, d.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return writeCSV(donationHeader, rows)
}

func ReportsCSV(reports []domain.Report) ([]byte, error) {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		lat, lng := point(r.Point)
		volunteer := ""
		if r.VolunteerID != nil {
			volunteer = *r.VolunteerID
		}
		rows = append(rows, []string{
			r.ID, r.ReporterID, r.ReporterName, r.AnimalType, r.Description,
			r.Location, r.Contact, string(r.Status), volunteer, lat, lng, r.ImageKey,
			r.ReportTime.UTC().Format(time.RFC3339), r.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return writeCSV(reportHeader, rows)
}

// Bundle loads every donation and report and returns them as a zip archive
// with donations.csv and reports.csv.
func Bundle(ctx context.Context, donations domain.DonationRepository, reports domain.ReportRepository, now time.Time) ([]byte, error) {
	var (
		ds []domain.Donation
		rs []domain.Report
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ds, err = donations.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rs, err = reports.List(gctx, domain.ReportFilter{Limit: domain.ReportLimitAll})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	donationCSV, err := DonationsCSV(ds)
	if err != nil {
		return nil, err
	}
	reportCSV, err := ReportsCSV(rs)
	if err != nil {
		return nil, err
	}
	return zip.Archive([]zip.File{
		{Filename: "donations.csv", Modified: now, Data: donationCSV},
		{Filename: "reports.csv", Modified: now, Data: reportCSV},
	})
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("export: write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func point(p *domain.Point) (string, string) {
	if p == nil {
		return "", ""
	}
	return strconv.FormatFloat(p.Lat, 'f', 6, 64), strconv.FormatFloat(p.Lng, 'f', 6, 64)
}

func timestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
