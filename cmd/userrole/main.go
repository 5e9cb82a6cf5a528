package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"strays/internal/adapter/repo"
	"strays/internal/domain"
	"strays/internal/infra"
)

func main() {
	var (
		idFlag       string
		usernameFlag string
		roleFlag     string
	)

	flag.StringVar(&idFlag, "id", "", "user ID to update (UUID)")
	flag.StringVar(&usernameFlag, "username", "", "username to update")
	flag.StringVar(&roleFlag, "role", "volunteer", "role to assign (donor, volunteer, admin)")
	flag.Parse()

	_ = godotenv.Load()

	userID := strings.TrimSpace(idFlag)
	username := strings.TrimSpace(usernameFlag)
	if userID == "" && username == "" {
		exitWithError(errors.New("either -id or -username must be provided"))
	}
	if strings.TrimSpace(roleFlag) == "" {
		exitWithError(errors.New("-role is required"))
	}
	role, err := domain.ParseUserRole(roleFlag)
	if err != nil {
		exitWithError(err)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "userrole").Logger()
	users := repo.NewUserRepository(infra.NewSQLRunner(pool, logger))

	var user *domain.User
	if userID != "" {
		user, err = users.GetByID(ctx, userID)
	} else {
		user, err = users.GetByUsername(ctx, username)
	}
	if err != nil {
		exitWithError(fmt.Errorf("failed to load user: %w", err))
	}

	if user.Role == role {
		fmt.Printf("User %s (%s) already has role %s\n", user.ID, user.Username, role)
		return
	}

	updated, err := users.SetRole(ctx, user.ID, role)
	if err != nil {
		exitWithError(fmt.Errorf("failed to update user role: %w", err))
	}
	fmt.Printf("User %s (%s) updated from %s to %s\n", updated.ID, updated.Username, user.Role, updated.Role)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
