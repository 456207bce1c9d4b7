package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/config"
	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/repository/postgres"
	"github.com/chiefcousin/toybox/internal/zoho"
)

func main() {
	zohoFlag := flag.Bool("zoho", false, "Search the Zoho Inventory item list instead of the local catalog")
	searchFlag := flag.String("search", "", "Only show items whose name or SKU contains this term")
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
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	linked, err := repos.Product.ListLinked(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list linked products: %v\n", err)
		os.Exit(1)
	}
	byItem := make(map[string]*domain.Product, len(linked))
	for _, p := range linked {
		byItem[*p.ZohoItemID] = p
	}

	if !*zohoFlag {
		fmt.Printf("🔍 %d products linked to Zoho items\n\n", len(linked))
		for _, p := range linked {
			if !matches(*searchFlag, p.Name, p.SKU) {
				continue
			}
			printProduct(p)
		}
		return
	}

	tokens := zoho.NewTokenManager(cfg.Zoho, repos.Settings, logger)
	if !tokens.IsConnected(ctx) {
		fmt.Fprintf(os.Stderr, "Zoho Inventory is not connected. Run: go run ./cmd/zoho-connect\n")
		os.Exit(1)
	}
	client := zoho.NewClient(cfg.Zoho, tokens, logger)

	fmt.Println("🔍 Fetching all items from Zoho Inventory...")

	itemCount, unlinked := 0, 0
	for page := 1; ; page++ {
		resp, err := client.ListItems(ctx, page, 200)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to query Zoho: %v\n", err)
			os.Exit(1)
		}
		for _, item := range resp.Items {
			itemCount++
			if !matches(*searchFlag, item.Name, item.SKU) {
				continue
			}
			fmt.Printf("%s  %s  rate=%s  stock=%g  status=%s\n",
				item.ItemID, item.Name, item.Rate.StringFixed(2), item.AvailableForSaleStock, item.Status)
			if p, ok := byItem[item.ItemID]; ok {
				fmt.Printf("    ✅ linked to /%s\n", p.Slug)
			} else {
				unlinked++
				fmt.Printf("    ⚠️  not synced yet\n")
			}
		}
		if !resp.HasMore() {
			break
		}
		fmt.Printf("⏳ Read %d items...\r", itemCount)
	}

	fmt.Printf("\n✅ Read %d Zoho items (%d not in the local catalog)\n", itemCount, unlinked)
	if unlinked > 0 {
		fmt.Println("Run go run ./cmd/zoho-sync to import them.")
	}
}

func printProduct(p *domain.Product) {
	status := "active"
	if !p.IsActive {
		status = "inactive"
	}
	synced := "never"
	if p.LastSyncedFromZoho != nil {
		synced = p.LastSyncedFromZoho.Format(time.RFC3339)
	}
	fmt.Printf("%s  %s  price=%s  stock=%d  %s\n", *p.ZohoItemID, p.Name, p.Price.StringFixed(2), p.StockQuantity, status)
	fmt.Printf("    slug: %s  last synced: %s\n", p.Slug, synced)
}

func matches(term, name string, sku *string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(name), term) {
		return true
	}
	return sku != nil && strings.Contains(strings.ToLower(*sku), term)
}
