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

	"github.com/jmspivey7/PlateSync-sub002/internal/adapter/repo"
	"github.com/jmspivey7/PlateSync-sub002/internal/auth"
	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
)

func main() {
	var (
		emailFlag    string
		passwordFlag string
		firstFlag    string
		lastFlag     string
	)
	flag.StringVar(&emailFlag, "email", "", "operator email")
	flag.StringVar(&passwordFlag, "password", "", "operator password (fallbacks to GLOBAL_ADMIN_PASSWORD)")
	flag.StringVar(&firstFlag, "first", "Platform", "first name")
	flag.StringVar(&lastFlag, "last", "Admin", "last name")
	flag.Parse()

	email, err := domain.NormalizeEmail(emailFlag)
	if err != nil {
		exitWithError(err)
	}
	password := passwordFlag
	if password == "" {
		password = os.Getenv("GLOBAL_ADMIN_PASSWORD")
	}
	if password == "" {
		exitWithError(errors.New("password is required via -password or GLOBAL_ADMIN_PASSWORD"))
	}
	hash, err := auth.HashPassword(password)
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

	logger := infra.NewLogger(os.Getenv("APP_ENV"), "globaladmin")
	admins := repo.NewGlobalAdminRepository(infra.NewSQLRunner(pool, logger))

	admin := &domain.GlobalAdmin{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(firstFlag),
		LastName:     strings.TrimSpace(lastFlag),
	}
	if err := admins.Upsert(ctx, admin); err != nil {
		exitWithError(fmt.Errorf("failed to save global admin: %w", err))
	}
	fmt.Printf("Global admin %s (%s) saved\n", admin.Email, admin.ID)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
