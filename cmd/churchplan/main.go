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
	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
)

func main() {
	var (
		idFlag     string
		emailFlag  string
		planFlag   string
		statusFlag string
		daysFlag   int
	)

	flag.StringVar(&idFlag, "church", "", "church ID to update (UUID)")
	flag.StringVar(&emailFlag, "email", "", "email of any user in the church")
	flag.StringVar(&planFlag, "plan", "", "plan to assign (trial, monthly, annual)")
	flag.StringVar(&statusFlag, "status", "active", "subscription status (trial, active, past_due, canceled, expired)")
	flag.IntVar(&daysFlag, "days", 0, "extend the trial or billing period this many days from now (<=0 keeps current value)")
	flag.Parse()

	churchID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(emailFlag)
	if churchID == "" && email == "" {
		exitWithError(errors.New("either -church or -email must be provided"))
	}

	change := domain.SubscriptionChange{}
	if p := strings.TrimSpace(planFlag); p != "" {
		plan := domain.SubscriptionPlan(strings.ToUpper(p))
		if !plan.Valid() {
			exitWithError(fmt.Errorf("unsupported plan %q", planFlag))
		}
		change.Plan = &plan
	}
	if s := strings.TrimSpace(statusFlag); s != "" {
		status := domain.SubscriptionStatus(strings.ToUpper(s))
		if !status.Valid() {
			exitWithError(fmt.Errorf("unsupported status %q", statusFlag))
		}
		change.Status = &status
	}
	if change.Plan == nil && change.Status == nil && daysFlag <= 0 {
		exitWithError(errors.New("nothing to change: pass -plan, -status or -days"))
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

	logger := infra.NewLogger(os.Getenv("APP_ENV"), "churchplan")
	runner := infra.NewSQLRunner(pool, logger)
	subscriptions := repo.NewSubscriptionRepository(runner)

	if churchID == "" {
		normalized, err := domain.NormalizeEmail(email)
		if err != nil {
			exitWithError(err)
		}
		user, err := repo.NewUserRepository(runner).GetByEmail(ctx, normalized)
		if err != nil {
			exitWithError(fmt.Errorf("failed to load user %s: %w", email, err))
		}
		churchID = user.ChurchID
	}

	current, err := subscriptions.Get(ctx, churchID)
	if err != nil {
		exitWithError(fmt.Errorf("failed to load subscription: %w", err))
	}
	change.ChurchID = churchID

	if daysFlag > 0 {
		until := time.Now().UTC().AddDate(0, 0, daysFlag)
		plan := current.Plan
		if change.Plan != nil {
			plan = *change.Plan
		}
		if plan == domain.PlanTrial {
			change.TrialEndsAt = &until
		} else {
			change.CurrentPeriodEnd = &until
		}
	}

	if err := subscriptions.Apply(ctx, change); err != nil {
		exitWithError(fmt.Errorf("failed to update subscription: %w", err))
	}
	updated, err := subscriptions.Get(ctx, churchID)
	if err != nil {
		exitWithError(fmt.Errorf("failed to reload subscription: %w", err))
	}

	fmt.Printf("Church %s now on plan %s (%s)\n", churchID, updated.Plan, updated.Status)
	if updated.TrialEndsAt != nil {
		fmt.Printf("trial_ends_at=%s\n", updated.TrialEndsAt.Format(time.RFC3339))
	}
	if updated.CurrentPeriodEnd != nil {
		fmt.Printf("current_period_end=%s\n", updated.CurrentPeriodEnd.Format(time.RFC3339))
	}
	fmt.Printf("usable=%t\n", updated.Usable(time.Now()))
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
