package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var htmlTags = regexp.MustCompile(`<[^>]+>`)

// SearchResult is the first hit for one query, already cleaned for storage.
type SearchResult struct {
	Title       string
	Description string
}

// SearchClient runs web searches against the Brave Search API.
type SearchClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewSearchClient(baseURL, apiKey string, timeout time.Duration) *SearchClient {
	return &SearchClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// TopResult returns the first fresh English result for the query, or nil when
// the provider has nothing for it. Only provider/transport problems are errors.
func (s *SearchClient) TopResult(ctx context.Context, query string) (*SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return nil, err
	}
	// Accept-Encoding stays unset so the transport negotiates gzip and
	// decompresses the body itself.
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", s.apiKey)

	q := url.Values{}
	q.Set("q", query)
	q.Set("fresh", "true")
	q.Set("text_format", "raw")
	q.Set("search_lang", "en")
	req.URL.RawQuery = q.Encode()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search %q: HTTP %d", query, resp.StatusCode)
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	if len(payload.Web.Results) == 0 {
		return nil, nil
	}

	first := payload.Web.Results[0]
	return &SearchResult{
		Title:       CleanText(first.Title),
		Description: CleanText(first.Description),
	}, nil
}

// CleanText strips HTML markup and collapses runs of whitespace, so provider
// snippets fit a single free-text column.
func CleanText(text string) string {
	clean := htmlTags.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(clean), " ")
}
