package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"finboard/metrics"
	"finboard/model"
	"finboard/store"
)

// Inserter is the slice of the store adapter the collectors write through.
type Inserter interface {
	Insert(ctx context.Context, coll store.Collection, record any) error
}

// QuoteSource provides the current BTC price from the external quote API.
type QuoteSource interface {
	BitcoinPrice(ctx context.Context) (float64, error)
}

// PriceCollector appends one PriceSample per run. The external scheduler is
// the retry mechanism; a failed run stores nothing.
type PriceCollector struct {
	quotes QuoteSource
	store  Inserter
	coll   store.Collection
	logger *zap.SugaredLogger
}

func NewPriceCollector(quotes QuoteSource, st Inserter, coll store.Collection, logger *zap.SugaredLogger) *PriceCollector {
	return &PriceCollector{
		quotes: quotes,
		store:  st,
		coll:   coll,
		logger: logger,
	}
}

// Run fetches the current price and appends exactly one sample. On fetch
// failure nothing is inserted; no placeholder sample is ever stored.
func (p *PriceCollector) Run(ctx context.Context) error {
	log := p.logger.With("run_id", uuid.NewString())

	price, err := p.quotes.BitcoinPrice(ctx)
	if err != nil {
		log.Warnw("failed to fetch BTC price", "error", err)
		return fmt.Errorf("fetch BTC price: %w", err)
	}

	sample := model.PriceSample{
		Price:     price,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if err := p.store.Insert(ctx, p.coll, sample); err != nil {
		log.Warnw("failed to store BTC price", "price", price, "error", err)
		return fmt.Errorf("store BTC price: %w", err)
	}

	metrics.RecordsCollected.WithLabelValues("price").Inc()
	log.Infow("stored BTC price", "price", price, "created_at", sample.CreatedAt)
	return nil
}
