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
	"github.com/chiefcousin/toybox/internal/zoho"
)

func main() {
	statusFlag := flag.Bool("status", false, "Print whether Zoho is connected")
	disconnectFlag := flag.Bool("disconnect", false, "Forget the stored Zoho tokens")
	flag.Parse()

	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Zoho.Configured() {
		fmt.Fprintf(os.Stderr, "ZOHO_CLIENT_ID, ZOHO_CLIENT_SECRET and ZOHO_ORG_ID must be set\n")
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

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch {
	case *statusFlag:
		if tokens.IsConnected(ctx) {
			fmt.Println("✅ Zoho Inventory is connected")
		} else {
			fmt.Println("❌ Zoho Inventory is not connected")
		}
		return
	case *disconnectFlag:
		if err := tokens.Disconnect(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to disconnect: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Zoho tokens removed")
		return
	}

	// Step 2: exchange the code copied from the redirect URL
	if flag.NArg() >= 1 {
		if err := tokens.ExchangeCode(ctx, flag.Arg(0)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to exchange code: %v\n", err)
			os.Exit(1)
		}
		if _, err := tokens.ValidAccessToken(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Tokens stored but the access token is not usable: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Zoho Inventory connected! Tokens stored in store_settings.\n")
		fmt.Printf("Run a first catalog sync with: go run ./cmd/zoho-sync\n")
		return
	}

	// Step 1: print the consent URL
	fmt.Printf("Step 1: Authorize the app\n\n")
	fmt.Printf("Visit this URL in your browser:\n")
	fmt.Printf("%s\n\n", tokens.AuthURL(""))
	fmt.Printf("After authorizing, copy the 'code' parameter from the redirect URL (%s).\n", cfg.Zoho.RedirectURI)
	fmt.Printf("Then run:\n")
	fmt.Printf("go run ./cmd/zoho-connect <code>\n")
}
