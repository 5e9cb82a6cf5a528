package domain

import (
	"fmt"
	"strings"
	"time"
)

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleDonor     UserRole = "donor"
	UserRoleVolunteer UserRole = "volunteer"
	UserRoleAdmin     UserRole = "admin"
)

// ParseUserRole validates a role string. An empty value maps to the donor role.
func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(strings.ToLower(strings.TrimSpace(s))) {
	case "", UserRoleDonor:
		return UserRoleDonor, nil
	case UserRoleVolunteer:
		return UserRoleVolunteer, nil
	case UserRoleAdmin:
		return UserRoleAdmin, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
}

// Points awarded for contributions.
const (
	DonationPoints = 10
	ReportPoints   = 5
)

// User represents an account. Users are never hard-deleted.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         UserRole
	Points       int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// CanHandleReports reports whether the user may move sighting reports through their lifecycle.
func (u User) CanHandleReports() bool {
	return u.Role == UserRoleVolunteer || u.Role == UserRoleAdmin
}
