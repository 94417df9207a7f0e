package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/jmspivey7/PlateSync-sub002/internal/migrations"
)

func main() {
	var listFlag bool
	flag.BoolVar(&listFlag, "list", false, "print embedded migration versions and exit")
	flag.Parse()

	_ = godotenv.Load()

	if listFlag {
		versions, err := migrations.Versions()
		if err != nil {
			exitWithError(fmt.Errorf("failed to read migrations: %w", err))
		}
		for _, v := range versions {
			fmt.Println(v)
		}
		return
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(fmt.Errorf("DATABASE_URL is required"))
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to open database: %w", err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	applied, err := migrations.Apply(ctx, db)
	if err != nil {
		exitWithError(err)
	}
	if len(applied) == 0 {
		fmt.Println("schema is up to date")
		return
	}
	for _, v := range applied {
		fmt.Printf("applied %s\n", v)
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
