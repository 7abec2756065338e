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

	zl, err := logger.New(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer zl.Sync()

	quotes := fetcher.NewQuoteClient(cfg.Quote.BaseURL, cfg.Quote.Timeout)
	records := store.NewClient(cfg.Store.URL, cfg.Store.Key, cfg.Store.Timeout, zl)
	priceColl := store.Collection{Table: cfg.Store.PriceTable, OrderField: cfg.Store.PriceOrderField}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	agent := collector.NewPriceCollector(quotes, records, priceColl, zl)
	if err := agent.Run(ctx); err != nil {
		zl.Fatalw("price collection failed", "error", err)
	}
}
