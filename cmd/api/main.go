package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osteoflow/clinic-service/internal/audit"
	"github.com/osteoflow/clinic-service/internal/auth"
	"github.com/osteoflow/clinic-service/internal/db"
	httpserver "github.com/osteoflow/clinic-service/internal/http"
	"github.com/osteoflow/clinic-service/internal/telemetry"
)

func main() {
	log.Println("clinic-service starting")

	ctx := context.Background()

	// Initialize OpenTelemetry (failures are non-fatal)
	otelCfg := telemetry.LoadConfig()
	provider, err := telemetry.InitProvider(ctx, otelCfg)
	if err != nil {
		log.Printf("Warning: OpenTelemetry initialization failed: %v", err)
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Printf("Warning: failed to initialize metrics: %v", err)
	}

	// Connect to PostgreSQL
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Audit event publisher; Record degrades to local logging without it
	recorder, err := audit.NewPublisher()
	if err != nil {
		log.Printf("Warning: audit publisher unavailable: %v", err)
	}

	// Auth: JWKS, verifier, permissions
	authCfg := auth.LoadConfig()
	jwks, err := auth.NewJWKS(authCfg.JWKSURL, 0)
	if err != nil {
		log.Fatalf("Failed to load JWKS: %v", err)
	}
	verifier := auth.NewVerifier(authCfg, jwks)

	permsPath := os.Getenv("PERMISSIONS_FILE")
	if permsPath == "" {
		permsPath = "permissions.yml"
	}
	perms, err := auth.LoadPermissions(permsPath)
	if err != nil {
		log.Fatalf("Failed to load permissions from %s: %v", permsPath, err)
	}

	router := httpserver.SetupRouter(database, verifier, perms, recorder, metrics)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      httpserver.CORSMiddleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✓ clinic-service listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down clinic-service...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			log.Printf("Error closing audit publisher: %v", err)
		}
	}

	if provider != nil {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}

	log.Println("✓ clinic-service stopped")
}
