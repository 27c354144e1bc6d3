package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/smarttransit/fleet-booking-backend/internal/config"
	"github.com/smarttransit/fleet-booking-backend/internal/database"
)

// Child tables first so the listing reads in dependency order; CASCADE covers the rest.
var tables = []string{
	"audit_logs",
	"payments",
	"bookings",
	"rentals",
	"tour_bookings",
	"tour_packages",
	"provider_contracts",
	"service_records",
	"financial_entries",
	"vehicles",
}

func main() {
	var dbURLFlag string
	var keepFleet, confirm bool
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&keepFleet, "keep-fleet", false, "keep vehicles and tour packages, clear only transactional data")
	flag.BoolVar(&confirm, "yes", false, "required; confirms the truncate")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}
	if !confirm {
		log.Fatal("refusing to clear data without -yes")
	}

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	targets := make([]string, 0, len(tables))
	for _, t := range tables {
		if keepFleet && (t == "vehicles" || t == "tour_packages") {
			continue
		}
		targets = append(targets, t)
	}

	if keepFleet {
		// Released vehicles must not point at rentals that no longer exist.
		if _, err := db.Exec(`UPDATE vehicles SET occupied_by = NULL, is_available = TRUE, updated_at = NOW() WHERE occupied_by IS NOT NULL`); err != nil {
			log.Fatalf("failed to release vehicles: %v", err)
		}
	}

	fmt.Printf("Truncating %d tables...\n", len(targets))
	query := "TRUNCATE TABLE "
	for i, t := range targets {
		if i > 0 {
			query += ", "
		}
		query += t
	}
	query += " RESTART IDENTITY CASCADE"

	if _, err := db.Exec(query); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	fmt.Println("Post-clear row counts:")
	for _, t := range tables {
		var count int
		if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", t)).Scan(&count); err != nil {
			fmt.Printf("  %s: error: %v\n", t, err)
			continue
		}
		fmt.Printf("  %s: %d\n", t, count)
	}
}
