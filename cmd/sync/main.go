package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/osteoflow/clinic-service/internal/appointment"
	"github.com/osteoflow/clinic-service/internal/audit"
	"github.com/osteoflow/clinic-service/internal/consultation"
	"github.com/osteoflow/clinic-service/internal/db"
	"github.com/osteoflow/clinic-service/internal/patient"
)

func main() {
	log.Println("Next-Appointment Sync Job - Starting")

	// Connect to database
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Audit publisher is optional for the batch job
	recorder, err := audit.NewPublisher()
	if err != nil {
		log.Printf("Warning: audit publisher unavailable, events will be skipped: %v", err)
	}
	defer func() {
		if recorder != nil {
			recorder.Close()
		}
	}()

	patientRepo := patient.NewRepository(database)
	service := appointment.NewService(
		appointment.NewRepository(database),
		patientRepo,
		consultation.NewRepository(database),
		recorder,
	)

	workers := appointment.DefaultSyncWorkers
	if v := os.Getenv("SYNC_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			workers = n
		}
	}

	syncService := appointment.NewSyncService(service, patientRepo, workers)

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Check how many practitioners have patients to repair
	count, err := syncService.CountPractitioners(ctx)
	if err != nil {
		log.Fatalf("Failed to count practitioners: %v", err)
	}

	log.Printf("Found %d practitioners with patients", count)

	if count == 0 {
		log.Println("Nothing to sync. Exiting.")
		os.Exit(0)
	}

	// Perform repair
	result, err := syncService.RunAll(ctx)
	if err != nil {
		log.Fatalf("Sync failed: %v", err)
	}

	log.Printf("✓ Sync completed: %d patients processed, %d updated, %d errors",
		result.Processed, result.Updated, result.Errors)
	log.Println("Sync Job - Finished")
}
