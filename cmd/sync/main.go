package main

import (
	"context"
	"flag"
	"log"
	"time"

	"numu-analytics-backend/internal/config"
	"numu-analytics-backend/internal/database"
	"numu-analytics-backend/internal/numu"
	"numu-analytics-backend/internal/repository"
	"numu-analytics-backend/internal/syncer"
)

// One-shot sync runner for cron jobs and manual backfills. The HTTP
// server exposes the same operation behind POST /api/sync.
func main() {
	full := flag.Bool("full", false, "wipe local data and resync everything")
	surveyID := flag.String("survey", "", "limit the sync to a single survey ID")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.ValidateNumu(); err != nil {
		log.Fatalf("✗ %v", err)
	}

	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()

	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}

	client := numu.NewClient(cfg.NumuBaseURL, cfg.NumuAPIKey, numu.WithMaxPages(cfg.SyncMaxPages))
	surveyCache := numu.NewSurveyCache(client, redisClient, 10*time.Minute)
	service := syncer.NewService(
		surveyCache,
		client,
		repository.NewSurveyRepo(pool),
		repository.NewResponseRepo(pool),
		syncer.WithPageLimit(cfg.SyncPageLimit),
		syncer.WithMaxPages(cfg.SyncMaxPages),
		syncer.WithStatusRecorder(syncer.NewRedisStatus(redisClient)),
		syncer.WithFullSurveyFetcher(client),
	)

	ctx := context.Background()

	var res syncer.Result
	if *full {
		log.Println("Starting full resync (local data will be replaced)...")
		res, err = service.FullResync(ctx)
	} else {
		res, err = service.Run(ctx, *surveyID)
	}

	if err != nil {
		if res.Partial {
			log.Printf("⚠ Partial sync: %d surveys, %d responses over %d page(s)", res.Surveys, res.Responses, res.Pages)
		}
		log.Fatalf("✗ Sync failed: %v", err)
	}

	log.Printf("✓ Sync complete: %d surveys, %d responses over %d page(s) in %s",
		res.Surveys, res.Responses, res.Pages, res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
}
