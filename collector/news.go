package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"finboard/fetcher"
	"finboard/metrics"
	"finboard/model"
	"finboard/store"
)

// SearchSource provides the top search hit for one query.
type SearchSource interface {
	TopResult(ctx context.Context, query string) (*fetcher.SearchResult, error)
}

// Category is one news category with its ordered query list.
type Category struct {
	Tag     string
	Queries []string
}

// DefaultCategories is the standing batch the news agent runs.
var DefaultCategories = []Category{
	{
		Tag: "CRYPTO",
		Queries: []string{
			"bitcoin price movement news",
			"cryptocurrency market updates",
			"bitcoin trading volume news",
			"crypto market sentiment",
		},
	},
	{
		Tag: "FINANCE",
		Queries: []string{
			"stock market news today",
			"federal reserve announcement",
			"global market trends",
			"economic indicators today",
		},
	},
}

// RunSummary counts the outcomes of one news batch.
type RunSummary struct {
	Stored  int
	Skipped int
	Failed  int
}

// NewsCollector runs the category queries sequentially and appends at most
// one NewsItem per query. Queries are paced to stay under the provider's
// rate limit; one bad query never aborts the rest of the batch.
type NewsCollector struct {
	search     SearchSource
	store      Inserter
	coll       store.Collection
	categories []Category
	limiter    *rate.Limiter
	logger     *zap.SugaredLogger
}

func NewNewsCollector(search SearchSource, st Inserter, coll store.Collection, categories []Category, queryGap time.Duration, logger *zap.SugaredLogger) *NewsCollector {
	return &NewsCollector{
		search:     search,
		store:      st,
		coll:       coll,
		categories: categories,
		limiter:    rate.NewLimiter(rate.Every(queryGap), 1),
		logger:     logger,
	}
}

// Run processes every category in order. The only error it returns is a
// cancelled context; per-query failures are logged, counted and skipped.
func (n *NewsCollector) Run(ctx context.Context) (RunSummary, error) {
	log := n.logger.With("run_id", uuid.NewString())

	var summary RunSummary
	for _, category := range n.categories {
		log.Infow("processing category", "category", category.Tag)

		for _, query := range category.Queries {
			if err := n.limiter.Wait(ctx); err != nil {
				return summary, err
			}

			switch n.processQuery(ctx, log, category.Tag, query) {
			case queryStored:
				summary.Stored++
			case querySkipped:
				summary.Skipped++
			case queryFailed:
				summary.Failed++
			}
		}
	}

	log.Infow("news batch finished",
		"stored", summary.Stored, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

type queryOutcome int

const (
	queryStored queryOutcome = iota
	querySkipped
	queryFailed
)

func (n *NewsCollector) processQuery(ctx context.Context, log *zap.SugaredLogger, tag, query string) queryOutcome {
	result, err := n.search.TopResult(ctx, query)
	if err != nil {
		// Provider trouble for one query reads the same as no news.
		log.Warnw("search failed", "query", query, "error", err)
		metrics.QueriesSkipped.WithLabelValues("provider_error").Inc()
		return querySkipped
	}
	if result == nil || (result.Title == "" && result.Description == "") {
		log.Infow("no news found", "query", query)
		metrics.QueriesSkipped.WithLabelValues("no_results").Inc()
		return querySkipped
	}

	item := model.NewsItem{
		FinanceInfo: fmt.Sprintf("[%s] Title: %s\nDescription: %s", tag, result.Title, result.Description),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	if err := n.store.Insert(ctx, n.coll, item); err != nil {
		log.Warnw("failed to store news", "query", query, "error", err)
		return queryFailed
	}

	metrics.RecordsCollected.WithLabelValues("news").Inc()
	log.Infow("stored news", "category", tag, "query", query)
	return queryStored
}
