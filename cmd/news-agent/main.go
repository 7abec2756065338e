package main

import (
	"context"
	"log"
	"time"

	"finboard/collector"
	"finboard/config"
	"finboard/fetcher"
	"finboard/logger"
	"finboard/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}
	if err := cfg.ValidateSearch(); err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	zl, err := logger.New(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer zl.Sync()

	search := fetcher.NewSearchClient(cfg.Search.BaseURL, cfg.Search.APIKey, cfg.Search.Timeout)
	records := store.NewClient(cfg.Store.URL, cfg.Store.Key, cfg.Store.Timeout, zl)
	newsColl := store.Collection{Table: cfg.Store.NewsTable, OrderField: cfg.Store.NewsOrderField}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	agent := collector.NewNewsCollector(search, records, newsColl, collector.DefaultCategories, cfg.Search.QueryGap, zl)
	summary, err := agent.Run(ctx)
	if err != nil {
		zl.Fatalw("news collection aborted", "error", err)
	}
	if summary.Stored == 0 {
		zl.Warnw("news collection stored nothing",
			"skipped", summary.Skipped, "failed", summary.Failed)
	}
}
