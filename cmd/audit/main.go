// Command audit inspects and prunes the admin audit trail.
//
//	audit history -entity rental -id <uuid> [-limit 20]
//	audit cleanup -older-than 2160h
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/config"
	"github.com/smarttransit/fleet-booking-backend/internal/database"
	"github.com/smarttransit/fleet-booking-backend/internal/services"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: audit <history|cleanup> [flags]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	audit := services.NewAuditService(db, logger)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "history":
		fs := flag.NewFlagSet("history", flag.ExitOnError)
		entity := fs.String("entity", "", "entity type, e.g. rental")
		id := fs.String("id", "", "entity id")
		limit := fs.Int("limit", 20, "max events")
		_ = fs.Parse(os.Args[2:])
		if *entity == "" || *id == "" {
			fs.Usage()
			os.Exit(2)
		}

		records, err := audit.EntityHistory(ctx, *entity, *id, *limit)
		if err != nil {
			logger.WithError(err).Fatal("Failed to read audit history")
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			logger.WithError(err).Fatal("Failed to encode audit history")
		}

	case "cleanup":
		fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
		olderThan := fs.Duration("older-than", 90*24*time.Hour, "delete events older than this")
		_ = fs.Parse(os.Args[2:])

		deleted, err := audit.CleanupOldAuditLogs(ctx, *olderThan)
		if err != nil {
			logger.WithError(err).Fatal("Failed to clean up audit logs")
		}
		logger.WithFields(logrus.Fields{
			"deleted":    deleted,
			"older_than": olderThan.String(),
		}).Info("Audit logs cleaned up")

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}
}
