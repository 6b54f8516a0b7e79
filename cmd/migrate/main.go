package main

// Run database migrations:
//   go run ./cmd/migrate            apply pending migrations
//   go run ./cmd/migrate --down     roll back the latest migration
//   go run ./cmd/migrate --status   print migration state

import (
	"context"
	"log"
	"os"

	"github.com/spf13/pflag"

	"recruit-backend/internal/shared/config"
	"recruit-backend/internal/shared/storage/db"
)

func main() {
	down := pflag.Bool("down", false, "roll back the most recent migration")
	status := pflag.Bool("status", false, "print migration status and exit")
	pflag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	run := db.RunMigrations
	switch {
	case *status:
		run = db.MigrationStatus
	case *down:
		run = db.RollbackMigration
	}
	if err := run(ctx, sqlDB); err != nil {
		log.Printf("migrate: %v", err)
		os.Exit(1)
	}
}
