package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/config"
	"github.com/chiefcousin/toybox/internal/repository/postgres"
	"github.com/chiefcousin/toybox/internal/service"
	"github.com/chiefcousin/toybox/internal/zoho"
)

func main() {
	itemFlag := flag.String("item", "", "Sync a single Zoho item id instead of the whole catalog")
	timeoutFlag := flag.Duration("timeout", 10*time.Minute, "Give up after this long")
	flag.Parse()

	_ = godotenv.Load(".env")

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
	tokens := zoho.NewTokenManager(cfg.Zoho, repos.Settings, logger)
	client := zoho.NewClient(cfg.Zoho, tokens, logger)
	// the in-process lock does not guard against a running server; a second sync is still safe
	syncSvc := service.NewCatalogSyncService(client, tokens, repos, nil, nil, cfg.Zoho.CompareAtLabel, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	if !tokens.IsConnected(ctx) {
		fmt.Fprintf(os.Stderr, "Zoho Inventory is not connected. Run: go run ./cmd/zoho-connect\n")
		os.Exit(1)
	}

	if *itemFlag != "" {
		fmt.Printf("🔄 Syncing Zoho item %s...\n", *itemFlag)
		if err := syncSvc.SyncItem(ctx, *itemFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to sync item: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Item synced")
		return
	}

	fmt.Println("🔄 Syncing products from Zoho Inventory...")
	result, err := syncSvc.SyncAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n📊 Total: %d | Created: %d | Updated: %d | Errors: %d\n",
		result.Total, result.Created, result.Updated, len(result.Errors))
	for _, e := range result.Errors {
		fmt.Printf("   ⚠️  %s\n", e)
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
	fmt.Println("✅ Sync completed")
}
