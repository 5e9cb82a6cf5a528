package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"strays/internal/domain"
	"strays/internal/infra"
	"strays/internal/sqlinline"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	db infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(db infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{db: db}
}

// Create inserts a user. Duplicate usernames or emails yield domain.ErrConflict.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) error {
	row := r.db.QueryRow(ctx, sqlinline.QInsertUser, user.ID, user.Username, user.Email, user.PasswordHash, string(user.Role))
	if err := row.Scan(&user.Points, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return mapErr("insert user", err)
	}
	return nil
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser("select user", r.db.QueryRow(ctx, sqlinline.QSelectUserByID, id))
}

// GetByUsername fetches a user by case-insensitive username.
func (r *UserRepositoryPG) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser("select user by username", r.db.QueryRow(ctx, sqlinline.QSelectUserByUsername, username))
}

func (r *UserRepositoryPG) UpdateProfile(ctx context.Context, id, username, email string) (*domain.User, error) {
	return scanUser("update profile", r.db.QueryRow(ctx, sqlinline.QUpdateUserProfile, id, username, email))
}

func (r *UserRepositoryPG) SetRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error) {
	return scanUser("update role", r.db.QueryRow(ctx, sqlinline.QUpdateUserRole, id, string(role)))
}

// Leaderboard returns users ordered by points.
func (r *UserRepositoryPG) Leaderboard(ctx context.Context, limit int) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, sqlinline.QLeaderboard, limit)
	if err != nil {
		return nil, mapErr("leaderboard", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser("leaderboard", rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("leaderboard", err)
	}
	return users, nil
}

func scanUser(op string, row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.Points, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(op, err)
	}
	u.Role = domain.UserRole(role)
	return &u, nil
}
