package main

import (
	"context"
	"log"
	"time"

	"finboard/config"
	"finboard/digest"
	"finboard/logger"
	"finboard/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}
	if err := cfg.ValidateMailgun(); err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	zl, err := logger.New(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer zl.Sync()

	records := store.NewClient(cfg.Store.URL, cfg.Store.Key, cfg.Store.Timeout, zl)
	priceColl := store.Collection{Table: cfg.Store.PriceTable, OrderField: cfg.Store.PriceOrderField}
	newsColl := store.Collection{Table: cfg.Store.NewsTable, OrderField: cfg.Store.NewsOrderField}
	mailer := digest.NewMailgunClient(cfg.Mailgun.APIKey, cfg.Mailgun.Domain, cfg.Mailgun.Recipient)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	job := digest.New(records, mailer, priceColl, newsColl, zl)
	if err := job.Run(ctx); err != nil {
		zl.Fatalw("digest failed", "error", err)
	}
}
