//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/punctoo/punctoo/internal/auth"
	"github.com/punctoo/punctoo/internal/database"
	"github.com/punctoo/punctoo/pkg/config"
	"github.com/punctoo/punctoo/pkg/util"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Seed the admin console account
	adminService := auth.NewAdminService(db, auth.NewAdminSessionStore(db, cfg.Session.RenewalWindow()))
	if err := adminService.SeedBootstrapAdmin(context.Background(), cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatalf("failed to seed admin account: %v", err)
	}

	// Create a demo customer for local development
	authService := auth.NewService(db, auth.NewSessionStore(db, cfg.Session.RenewalWindow()), nil)

	email := os.Getenv("DEMO_EMAIL")
	password := os.Getenv("DEMO_PASSWORD")
	if email == "" {
		email = "demo@example.com"
	}
	if password == "" {
		password = "demo1234!"
	}

	result, err := authService.Signup(context.Background(), auth.SignupInput{
		Email:                email,
		Password:             password,
		CompanyName:          "Demo Company",
		VATNumber:            "BE0123456789",
		AddressLine1:         "Main Street 1",
		Postcode:             "1000",
		City:                 "Brussels",
		Country:              "BE",
		DeliveryName:         "Demo Company",
		DeliveryAddressLine1: "Main Street 1",
		DeliveryPostcode:     "1000",
		DeliveryCity:         "Brussels",
		DeliveryCountry:      "BE",
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			fmt.Printf("Demo customer already exists: %s\n", email)
			return
		}
		log.Fatalf("failed to create demo customer: %v", err)
	}

	fmt.Printf("Demo customer created successfully!\n")
	fmt.Printf("Email: %s\n", result.User.Email)
	fmt.Printf("Company: %s (customer %d)\n", result.Company.Name, result.Company.CustomerNumber)
}
