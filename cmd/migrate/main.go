package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/config"
	"github.com/chiefcousin/toybox/internal/repository/postgres"
)

func usage() {
	fmt.Println("Usage: go run ./cmd/migrate [up|down|version|steps N|force N]")
	fmt.Println("  up        apply all pending migrations (default)")
	fmt.Println("  down      roll back every migration")
	fmt.Println("  version   print the current schema version")
	fmt.Println("  steps N   apply N migrations (negative rolls back)")
	fmt.Println("  force N   set the version without migrating (recover a dirty state)")
}

func main() {
	_ = godotenv.Load(".env")

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if cmd == "up" && cfg.Database.URL == "" {
		if err := ensureDatabase(cfg.Database); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to prepare database: %v\n", err)
			os.Exit(1)
		}
	}

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	m, err := postgres.NewMigrator(db, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load migrations: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps", "force":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		n, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil {
			fmt.Fprintf(os.Stderr, "Invalid number %q\n", os.Args[2])
			os.Exit(1)
		}
		if cmd == "steps" {
			err = m.Steps(n)
		} else {
			err = m.Force(n)
		}
	case "version":
		version, dirty, verErr := m.Version()
		if verErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to read version: %v\n", verErr)
			os.Exit(1)
		}
		fmt.Printf("Schema version: %d (dirty: %v)\n", version, dirty)
		return
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Migration completed successfully!")
}

// ensureDatabase creates the target database through the postgres maintenance database
func ensureDatabase(dbCfg config.DatabaseConfig) error {
	admin := dbCfg
	admin.DBName = "postgres"
	postgresDB, err := sql.Open("postgres", admin.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	defer postgresDB.Close()

	var exists bool
	err = postgresDB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", dbCfg.DBName,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}
	if exists {
		return nil
	}

	fmt.Printf("Database '%s' does not exist. Creating...\n", dbCfg.DBName)
	if _, err := postgresDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbCfg.DBName)); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	fmt.Printf("Database '%s' created successfully.\n", dbCfg.DBName)
	return nil
}
