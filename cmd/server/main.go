package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"numu-analytics-backend/internal/analytics"
	"numu-analytics-backend/internal/config"
	"numu-analytics-backend/internal/database"
	"numu-analytics-backend/internal/handlers"
	"numu-analytics-backend/internal/middleware"
	"numu-analytics-backend/internal/numu"
	"numu-analytics-backend/internal/repository"
	"numu-analytics-backend/internal/router"
	"numu-analytics-backend/internal/syncer"
)

func main() {
	log.Println("🚀 Starting NUMU Analytics Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	surveyRepo := repository.NewSurveyRepo(pool)
	responseRepo := repository.NewResponseRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	analyticsService := analytics.NewService(responseRepo)
	syncStatus := syncer.NewRedisStatus(redisClient)

	// The NUMU sync service is optional: without upstream credentials the
	// server still serves analytics over already-synced data.
	var syncRunner handlers.SyncRunner
	var scheduler *syncer.Scheduler
	if err := cfg.ValidateNumu(); err != nil {
		log.Printf("⚠ NUMU sync disabled: %v", err)
	} else {
		client := numu.NewClient(cfg.NumuBaseURL, cfg.NumuAPIKey, numu.WithMaxPages(cfg.SyncMaxPages))
		surveyCache := numu.NewSurveyCache(client, redisClient, 10*time.Minute)
		syncService := syncer.NewService(
			surveyCache,
			client,
			surveyRepo,
			responseRepo,
			syncer.WithPageLimit(cfg.SyncPageLimit),
			syncer.WithMaxPages(cfg.SyncMaxPages),
			syncer.WithStatusRecorder(syncStatus),
			// Full resyncs bypass the cache: a rebuild must see surveys
			// created since the last cache fill.
			syncer.WithFullSurveyFetcher(client),
		)
		syncRunner = syncService
		log.Println("✓ NUMU sync service initialized")

		if cfg.SyncIntervalMinutes > 0 {
			scheduler = syncer.NewScheduler(syncService, time.Duration(cfg.SyncIntervalMinutes)*time.Minute)
			scheduler.Start()
			log.Printf("✓ Sync scheduler started (every %d minutes)", cfg.SyncIntervalMinutes)
		}
	}

	// ──── Initialize Handlers ────
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, surveyRepo, responseRepo)
	syncHandler := handlers.NewSyncHandler(syncRunner, syncStatus)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(jwtAuth, analyticsHandler, syncHandler, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		if scheduler != nil {
			scheduler.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ NUMU Analytics Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
