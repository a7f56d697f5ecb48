package main

import (
	"context"
	"log"

	"github.com/david/hackathon-tracker/internal/config"
	"github.com/david/hackathon-tracker/internal/db"
	"github.com/david/hackathon-tracker/internal/ingest"
	"github.com/david/hackathon-tracker/internal/scheduler"
	"github.com/david/hackathon-tracker/internal/search"
	"github.com/david/hackathon-tracker/internal/store"
	"github.com/david/hackathon-tracker/internal/web"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var recordStore store.RecordStore
	switch cfg.StoreDriver {
	case "memory":
		log.Printf("Using in-memory store, records will not survive a restart")
		recordStore = store.NewMemoryStore()
	default:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		if err := db.ApplyMigrations(ctx, pool); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		recordStore = store.NewPostgresStore(pool)
	}

	var runner *scheduler.Runner
	if cfg.GeminiAPIKey == "" {
		log.Printf("GEMINI_API_KEY not set, scraping disabled")
	} else {
		queryCfg, err := search.LoadQueryConfig()
		if err != nil {
			log.Fatalf("Failed to load search config: %v", err)
		}
		client := search.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, queryCfg)
		pipeline := ingest.NewPipeline(recordStore, client, cfg.SearchLimit)
		runner = scheduler.New(pipeline, cfg.ScrapeEvery, cfg.CycleTimeout)
		if err := runner.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer runner.Stop()
	}

	srv, err := web.NewServer(recordStore, runner)
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}
	log.Printf("Server starting on port %s...", cfg.Port)
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
