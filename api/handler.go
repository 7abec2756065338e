package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"finboard/metrics"
	"finboard/model"
	"finboard/store"
)

// Per-endpoint fetch limits. Fixed by the dashboard layout, never
// client-controlled.
const (
	priceLimit = 24
	newsLimit  = 10
)

// RecordSource is the read side of the store adapter.
type RecordSource interface {
	FetchLatest(ctx context.Context, coll store.Collection, limit int) ([]map[string]any, error)
}

// Handler serves the dashboard's read-only API. It holds no mutable state;
// every request goes straight to the store.
type Handler struct {
	records   RecordSource
	priceColl store.Collection
	newsColl  store.Collection
	logger    *zap.SugaredLogger
}

func NewHandler(records RecordSource, priceColl, newsColl store.Collection, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		records:   records,
		priceColl: priceColl,
		newsColl:  newsColl,
		logger:    logger,
	}
}

// GetBTCPrice returns the latest price samples, newest first. An empty table
// is 200 with an empty array; only a store failure is a 500.
func (h *Handler) GetBTCPrice(c *gin.Context) {
	rows, err := h.records.FetchLatest(c.Request.Context(), h.priceColl, priceLimit)
	if err != nil {
		h.logger.Errorw("price fetch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch prices"})
		return
	}

	prices := make([]model.PricePoint, 0, len(rows))
	for _, row := range rows {
		price, ok := coerceFloat(row["price"])
		if !ok {
			h.logger.Warnw("skipping malformed price record", "row", row)
			metrics.MalformedRecordsSkipped.WithLabelValues("btc-price").Inc()
			continue
		}
		ts, ok := row[h.priceColl.OrderField].(string)
		if !ok || ts == "" {
			h.logger.Warnw("skipping price record without timestamp", "row", row)
			metrics.MalformedRecordsSkipped.WithLabelValues("btc-price").Inc()
			continue
		}
		prices = append(prices, model.PricePoint{Price: price, Timestamp: ts})
	}

	metrics.RecordsServed.WithLabelValues("btc-price").Add(float64(len(prices)))
	c.JSON(http.StatusOK, prices)
}

// GetNews returns the latest news items, newest first, with the same
// empty/failure semantics as GetBTCPrice. The store-assigned id is passed
// through when the row has one; older news tables have no id column.
func (h *Handler) GetNews(c *gin.Context) {
	rows, err := h.records.FetchLatest(c.Request.Context(), h.newsColl, newsLimit)
	if err != nil {
		h.logger.Errorw("news fetch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch news"})
		return
	}

	items := make([]model.NewsEntry, 0, len(rows))
	for _, row := range rows {
		info, ok := row["finance_info"].(string)
		if !ok || info == "" {
			h.logger.Warnw("skipping malformed news record", "row", row)
			metrics.MalformedRecordsSkipped.WithLabelValues("news").Inc()
			continue
		}
		ts, ok := row[h.newsColl.OrderField].(string)
		if !ok || ts == "" {
			h.logger.Warnw("skipping news record without timestamp", "row", row)
			metrics.MalformedRecordsSkipped.WithLabelValues("news").Inc()
			continue
		}
		items = append(items, model.NewsEntry{
			ID:          row["id"],
			FinanceInfo: info,
			Timestamp:   ts,
		})
	}

	metrics.RecordsServed.WithLabelValues("news").Add(float64(len(items)))
	c.JSON(http.StatusOK, items)
}

// coerceFloat accepts the number shapes a loosely typed table can hold.
func coerceFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case string:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
