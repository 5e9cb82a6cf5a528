package handlers

import (
	"net/http"
	"time"

	"strays/internal/domain"
	"strays/internal/intake"
)

const (
	defaultDonationList = 50
	maxDonationList     = 200
)

type donationRequest struct {
	Description    string `json:"description"`
	FoodType       string `json:"food_type"`
	Quantity       int    `json:"quantity"`
	PickupLocation string `json:"pickup_location"`
	PickupTime     string `json:"pickup_time"`
}

type donationDTO struct {
	ID             string        `json:"id"`
	DonorID        string        `json:"donor_id"`
	Donor          string        `json:"donor"`
	Description    string        `json:"description"`
	FoodType       string        `json:"food_type"`
	Quantity       int           `json:"quantity"`
	PickupLocation string        `json:"pickup_location"`
	PickupTime     *time.Time    `json:"pickup_time"`
	Location       *domain.Point `json:"location"`
	CreatedAt      time.Time     `json:"created_at"`
}

func toDonationDTO(d domain.Donation) donationDTO {
	return donationDTO{
		ID:             d.ID,
		DonorID:        d.DonorID,
		Donor:          d.DonorName,
		Description:    d.Description,
		FoodType:       d.FoodType,
		Quantity:       d.Quantity,
		PickupLocation: d.PickupLocation,
		PickupTime:     d.PickupTime,
		Location:       d.Location,
		CreatedAt:      d.CreatedAt,
	}
}

func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if !a.decode(w, r, &req) {
		return
	}
	pickup, err := parseOptionalTime(req.PickupTime)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	donor, ok := a.actor(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	d, err := a.Intake.SubmitDonation(r.Context(), donor, intake.DonationInput{
		Description:    req.Description,
		FoodType:       req.FoodType,
		Quantity:       req.Quantity,
		PickupLocation: req.PickupLocation,
		PickupTime:     pickup,
	}, a.country(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"donation":      toDonationDTO(*d),
		"points_earned": domain.DonationPoints,
	})
}

func (a *App) DonationsList(w http.ResponseWriter, r *http.Request) {
	donations, err := a.Donations.ListRecent(r.Context(), queryInt(r, "limit", defaultDonationList, maxDonationList))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]donationDTO, 0, len(donations))
	for _, d := range donations {
		items = append(items, toDonationDTO(d))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) DonationsMap(w http.ResponseWriter, r *http.Request) {
	markers, err := a.Maps.Donations(r.Context(), a.country(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"markers": markers})
}
