package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"finboard/metrics"
)

// ErrUnavailable is returned for every transport, auth or decoding failure.
// Callers only ever need to know that the store could not serve the call;
// the detail stays in the wrapped error and the logs.
var ErrUnavailable = errors.New("store unavailable")

// Collection names one append-only table and the timestamp field it is
// ordered by. The field name differs between tables, so it travels with the
// collection instead of being baked into the client.
type Collection struct {
	Table      string
	OrderField string
}

// Client talks to a PostgREST-style table store over its REST interface.
// It is stateless between calls; every call is independently retryable.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.SugaredLogger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Insert appends one record to the collection. The store assigns the row id.
func (c *Client) Insert(ctx context.Context, coll Collection, record any) error {
	start := time.Now()

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: encode record: %v", ErrUnavailable, err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, coll.Table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("insert", coll.Table, "error").Inc()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.StoreOperationsTotal.WithLabelValues("insert", coll.Table, "error").Inc()
		return fmt.Errorf("%w: insert into %s: HTTP %d", ErrUnavailable, coll.Table, resp.StatusCode)
	}

	metrics.StoreOperationsTotal.WithLabelValues("insert", coll.Table, "ok").Inc()
	metrics.StoreOperationDuration.WithLabelValues("insert", coll.Table).Observe(time.Since(start).Seconds())
	c.logger.Debugw("record inserted", "table", coll.Table)
	return nil
}

// FetchLatest returns at most limit rows, newest first by the collection's
// order field. An empty table is an empty slice, not an error. Rows come back
// raw so the serving layer can reshape them defensively.
func (c *Client) FetchLatest(ctx context.Context, coll Collection, limit int) ([]map[string]any, error) {
	start := time.Now()

	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, coll.Table)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c.setHeaders(req)

	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", coll.OrderField+".desc")
	q.Set("limit", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("fetch", coll.Table, "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.StoreOperationsTotal.WithLabelValues("fetch", coll.Table, "error").Inc()
		return nil, fmt.Errorf("%w: fetch from %s: HTTP %d", ErrUnavailable, coll.Table, resp.StatusCode)
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("fetch", coll.Table, "error").Inc()
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	metrics.StoreOperationsTotal.WithLabelValues("fetch", coll.Table, "ok").Inc()
	metrics.StoreOperationDuration.WithLabelValues("fetch", coll.Table).Observe(time.Since(start).Seconds())
	c.logger.Debugw("records fetched", "table", coll.Table, "count", len(rows))
	return rows, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
}
