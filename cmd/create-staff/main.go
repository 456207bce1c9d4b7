package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/config"
	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/repository/postgres"
	"github.com/chiefcousin/toybox/internal/service"
)

func main() {
	emailFlag := flag.String("email", "", "Login email")
	nameFlag := flag.String("name", "", "Display name")
	passwordFlag := flag.String("password", "", "Password (at least 8 characters)")
	roleFlag := flag.String("role", string(domain.StaffRoleAdmin), "Role: admin, staff or partner")
	flag.Parse()

	email, password := *emailFlag, *passwordFlag
	if email == "" && flag.NArg() >= 2 {
		email = flag.Arg(0)
		password = flag.Arg(1)
	}
	if email == "" || password == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/create-staff --email owner@example.com --password \"secret-pass\" [--name \"Owner\"] [--role admin|staff|partner]")
		fmt.Println("  go run ./cmd/create-staff owner@example.com \"secret-pass\"")
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)
	staff := service.NewStaffService(repos.Staff, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, logger)

	role := domain.StaffRole(strings.ToLower(strings.TrimSpace(*roleFlag)))
	user, err := staff.CreateStaff(context.Background(), email, *nameFlag, password, role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create staff account: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Staff account created successfully!\n\n")
	fmt.Printf("ID:    %s\n", user.ID.String())
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Role:  %s\n", user.Role)
	fmt.Printf("\nLog in with POST /api/admin/login\n")
}
