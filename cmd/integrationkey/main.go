package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra/credentials"
)

func main() {
	var (
		keyFlag   string
		clearFlag bool
	)
	flag.StringVar(&keyFlag, "key", "", "SendGrid API key (fallbacks to SENDGRID_API_KEY)")
	flag.BoolVar(&clearFlag, "clear", false, "remove the stored key so the worker uses the environment value")
	flag.Parse()

	key := strings.TrimSpace(keyFlag)
	if key == "" && !clearFlag {
		key = strings.TrimSpace(os.Getenv("SENDGRID_API_KEY"))
	}
	if key == "" && !clearFlag {
		fmt.Fprintln(os.Stderr, "SendGrid API key is required via -key or environment")
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger(os.Getenv("APP_ENV"), "integrationkey").With().Str("provider", credentials.ProviderSendGrid).Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	ctxExec, cancelExec := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelExec()

	if clearFlag {
		if err := store.DeleteToken(ctxExec, credentials.ProviderSendGrid, credentials.ScopeSystem); err != nil {
			fmt.Fprintf(os.Stderr, "failed to clear sendgrid api key: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("SendGrid API key cleared")
		return
	}

	if err := store.SetSendGridAPIKey(ctxExec, key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist sendgrid api key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("SendGrid API key stored successfully")
}
