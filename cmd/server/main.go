package main

import (
	"log"

	"finboard/api"
	"finboard/config"
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

	records := store.NewClient(cfg.Store.URL, cfg.Store.Key, cfg.Store.Timeout, zl)
	priceColl := store.Collection{Table: cfg.Store.PriceTable, OrderField: cfg.Store.PriceOrderField}
	newsColl := store.Collection{Table: cfg.Store.NewsTable, OrderField: cfg.Store.NewsOrderField}

	handler := api.NewHandler(records, priceColl, newsColl, zl)
	router := api.NewRouter(handler, "web")

	zl.Infow("dashboard API starting", "addr", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		zl.Fatalw("server failed", "error", err)
	}
}
