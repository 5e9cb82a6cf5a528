package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"strays/internal/auth"
	"strays/internal/domain"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type tokenResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      userProfileDTO `json:"user"`
}

type userProfileDTO struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	Points    int             `json:"points"`
	CreatedAt time.Time       `json:"created_at"`
}

func toUserDTO(u *domain.User) userProfileDTO {
	return userProfileDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Points:    u.Points,
		CreatedAt: u.CreatedAt,
	}
}

// AuthRegister creates a donor or volunteer account and signs it in.
// Administrators are promoted through the admin endpoint or the CLI.
func (a *App) AuthRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !a.decode(w, r, &req) {
		return
	}
	username, email, err := validateProfile(req.Username, req.Email)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	role, err := domain.ParseUserRole(req.Role)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if role == domain.UserRoleAdmin {
		a.error(w, http.StatusForbidden, "forbidden", "admin accounts cannot self-register")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := a.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			a.error(w, http.StatusConflict, "conflict", "username or email already registered")
			return
		}
		a.fail(w, r, err)
		return
	}
	a.issueToken(w, r, http.StatusCreated, user)
}

func (a *App) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.decode(w, r, &req) {
		return
	}
	user, err := a.Users.GetByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		a.fail(w, r, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid username or password")
		return
	}
	a.issueToken(w, r, http.StatusOK, user)
}

func (a *App) issueToken(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	token, exp, err := a.Tokens.Make(*user)
	if err != nil {
		a.fail(w, r, fmt.Errorf("sign token: %w", err))
		return
	}
	a.json(w, status, tokenResponse{Token: token, ExpiresAt: exp, User: toUserDTO(user)})
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	user, err := a.Users.GetByID(r.Context(), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toUserDTO(user))
}

// MeUpdate changes the caller's username and email. Existing tokens keep the
// old username until they expire.
func (a *App) MeUpdate(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !a.decode(w, r, &req) {
		return
	}
	username, email, err := validateProfile(req.Username, req.Email)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	user, err := a.Users.UpdateProfile(r.Context(), a.currentUserID(r), username, email)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toUserDTO(user))
}

func (a *App) UserSetRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Role) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "role required")
		return
	}
	role, err := domain.ParseUserRole(req.Role)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	user, err := a.Users.SetRole(r.Context(), chi.URLParam(r, "id"), role)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("user_id", user.ID).Str("role", string(role)).Str("by", a.currentUserID(r)).Msg("role changed")
	a.json(w, http.StatusOK, toUserDTO(user))
}

func validateProfile(username, email string) (string, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	var problems []string
	if n := utf8.RuneCountInString(username); n < 3 || n > 80 {
		problems = append(problems, "username must be 3-80 characters")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email || len(email) > 120 {
		problems = append(problems, "email is invalid")
	}
	if len(problems) > 0 {
		return "", "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return username, strings.ToLower(email), nil
}
