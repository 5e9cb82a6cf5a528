package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strays/internal/adapter/memory"
	"strays/internal/domain"
)

func TestDonationsCSV(t *testing.T) {
	pickup := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	data, err := DonationsCSV([]domain.Donation{{
		ID:             "d1",
		DonorID:        "u1",
		DonorName:      "asha",
		Description:    "Rice, dal",
		Quantity:       4,
		PickupLocation: "MG Road",
		PickupTime:     &pickup,
		Location:       &domain.Point{Lat: 12.9716, Lng: 77.5946},
		CreatedAt:      pickup,
	}})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, donationHeader, records[0])
	assert.Equal(t, "Rice, dal", records[1][3])
	assert.Equal(t, "2024-05-02T09:30:00Z", records[1][7])
	assert.Equal(t, "12.971600", records[1][8])
}

func TestReportsCSVEmptyOptionalFields(t *testing.T) {
	data, err := ReportsCSV([]domain.Report{{ID: "r1", Status: domain.ReportStatusPending}})
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "pending", records[1][7])
	assert.Equal(t, "", records[1][8])
	assert.Equal(t, "", records[1][9])
}

func TestBundle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Users().Create(ctx, &domain.User{ID: "u1", Username: "asha", Email: "a@example.com", Role: domain.UserRoleDonor}))
	require.NoError(t, store.Donations().Create(ctx, &domain.Donation{ID: "d1", DonorID: "u1", Description: "Biscuits"}, domain.DonationPoints))
	require.NoError(t, store.Reports().Create(ctx, &domain.Report{ID: "r1", ReporterID: "u1", AnimalType: "Dog"}, domain.ReportPoints))

	data, err := Bundle(ctx, store.Donations(), store.Reports(), time.Now())
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	names := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		_ = rc.Close()
		names[f.Name] = string(body)
	}
	assert.Contains(t, names["donations.csv"], "Biscuits")
	assert.Contains(t, names["reports.csv"], "Dog")
}
