package domain

import "time"

// Donation represents a food donation offered for pickup. Fields other than
// Location are fixed at creation; Location may be filled in later by geocoding.
type Donation struct {
	ID             string
	DonorID        string
	DonorName      string
	Description    string
	FoodType       string
	Quantity       int
	PickupLocation string
	PickupTime     *time.Time
	Location       *Point
	CreatedAt      time.Time
}
