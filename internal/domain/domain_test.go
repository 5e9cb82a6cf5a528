package domain

import (
	"errors"
	"math"
	"testing"
)

func TestReportStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to ReportStatus
		want     bool
	}{
		{ReportStatusPending, ReportStatusAssigned, true},
		{ReportStatusPending, ReportStatusResolved, true},
		{ReportStatusAssigned, ReportStatusResolved, true},
		{ReportStatusAssigned, ReportStatusPending, true},
		{ReportStatusResolved, ReportStatusPending, false},
		{ReportStatusResolved, ReportStatusAssigned, false},
		{ReportStatusPending, ReportStatusPending, false},
	}
	for _, tc := range tests {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Fatalf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole(" Volunteer ")
	if err != nil || role != UserRoleVolunteer {
		t.Fatalf("ParseUserRole() = %q, %v", role, err)
	}
	role, err = ParseUserRole("")
	if err != nil || role != UserRoleDonor {
		t.Fatalf("empty role = %q, %v; want donor", role, err)
	}
	if _, err := ParseUserRole("root"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDistanceKm(t *testing.T) {
	blr := Point{Lat: 12.9716, Lng: 77.5946}
	if d := DistanceKm(blr, blr); d != 0 {
		t.Fatalf("distance to self = %v", d)
	}
	chennai := Point{Lat: 13.0827, Lng: 80.2707}
	d := DistanceKm(blr, chennai)
	if math.Abs(d-290) > 10 {
		t.Fatalf("Bengaluru-Chennai distance = %.1f km, want ~290", d)
	}
}

func TestPointValid(t *testing.T) {
	if !(Point{Lat: -90, Lng: 180}).Valid() {
		t.Fatal("boundary point should be valid")
	}
	if (Point{Lat: 91, Lng: 0}).Valid() {
		t.Fatal("lat 91 should be invalid")
	}
	if (Point{Lat: math.NaN(), Lng: 0}).Valid() {
		t.Fatal("NaN should be invalid")
	}
}
