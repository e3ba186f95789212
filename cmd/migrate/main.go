package main

// Run database migrations:
//   go run ./cmd/migrate                 # apply pending migrations
//   go run ./cmd/migrate --status        # print applied versions
//   go run ./cmd/migrate --down          # roll back one version

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"holiday-backend/internal/shared/config"
	"holiday-backend/internal/shared/storage/db"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Printf("migrate: %v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := config.Load()

	flags := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	databaseURL := flags.String("database-url", cfg.DatabaseURL, "Postgres connection string (defaults to DATABASE_URL)")
	down := flags.Bool("down", false, "roll back the most recent migration")
	status := flags.Bool("status", false, "print migration status and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *down && *status {
		return fmt.Errorf("--down and --status are mutually exclusive")
	}

	dir := db.Up
	switch {
	case *down:
		dir = db.Down
	case *status:
		dir = db.Status
	}

	ctx := context.Background()
	sqlDB, err := db.Connect(ctx, *databaseURL, db.DefaultOptions(db.ProfileMigrate).FromEnv())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("%s: %w", dir, err)
	}
	log.Printf("migrate %s complete", dir)
	return nil
}
