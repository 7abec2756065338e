package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNoQuote is returned when the quote source answers without a usable
// price for the requested instrument/currency pair.
var ErrNoQuote = errors.New("no quote in response")

// QuoteClient fetches spot prices from a CoinGecko-compatible API.
type QuoteClient struct {
	baseURL string
	client  *http.Client
}

func NewQuoteClient(baseURL string, timeout time.Duration) *QuoteClient {
	return &QuoteClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// BitcoinPrice returns the current BTC price in USD.
func (q *QuoteClient) BitcoinPrice(ctx context.Context) (float64, error) {
	return q.Price(ctx, "bitcoin", "usd")
}

// Price fetches the current price of one instrument in one currency. A
// response that lacks the currency key is a fetch failure, never a zero price.
func (q *QuoteClient) Price(ctx context.Context, instrument, currency string) (float64, error) {
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", q.baseURL, instrument, currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch quote: HTTP %d", resp.StatusCode)
	}

	var quotes map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return 0, fmt.Errorf("decode quote: %w", err)
	}

	price, ok := quotes[instrument][currency]
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s", ErrNoQuote, instrument, currency)
	}
	return price, nil
}
