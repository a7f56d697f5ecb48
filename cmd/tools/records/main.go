package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/hackathon-tracker/internal/config"
	"github.com/david/hackathon-tracker/internal/db"
	"github.com/david/hackathon-tracker/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	records, err := store.NewPostgresStore(pool).ListAll(ctx)
	if err != nil {
		log.Fatal(err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Title", "Status", "Platform", "Ends", "URL", "Scraped"})

	now := time.Now().UTC()
	for i := range records {
		records[i].ComputeDaysUntil(now)
		t.AppendRow(table.Row{
			records[i].Title,
			records[i].Status,
			records[i].Platform,
			records[i].EndDate,
			records[i].WebsiteURL,
			records[i].ScrapedAt.Format("2006-01-02 15:04"),
		})
	}
	t.Render()
	log.Printf("%d hackathons tracked", len(records))
}
