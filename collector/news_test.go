package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finboard/fetcher"
	"finboard/model"
	"finboard/store"
)

type fakeSearch struct {
	TopResultFunc func(ctx context.Context, query string) (*fetcher.SearchResult, error)
	queries       []string
}

func (f *fakeSearch) TopResult(ctx context.Context, query string) (*fetcher.SearchResult, error) {
	f.queries = append(f.queries, query)
	if f.TopResultFunc != nil {
		return f.TopResultFunc(ctx, query)
	}
	return &fetcher.SearchResult{Title: "Title for " + query, Description: "Desc for " + query}, nil
}

var newsColl = store.Collection{Table: "eco_info", OrderField: "timestamp"}

func newsAgent(search SearchSource, st Inserter, categories []Category) *NewsCollector {
	return NewNewsCollector(search, st, newsColl, categories, time.Millisecond, zap.NewNop().Sugar())
}

func TestNewsCollector_Run(t *testing.T) {
	categories := []Category{
		{Tag: "CRYPTO", Queries: []string{"bitcoin news", "crypto sentiment"}},
		{Tag: "FINANCE", Queries: []string{"stock market"}},
	}
	search := &fakeSearch{}
	st := &fakeInserter{}

	summary, err := newsAgent(search, st, categories).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Stored: 3}, summary)

	// Sequential, in configured order, one item per query.
	assert.Equal(t, []string{"bitcoin news", "crypto sentiment", "stock market"}, search.queries)
	require.Len(t, st.inserted, 3)

	first, ok := st.inserted[0].(model.NewsItem)
	require.True(t, ok)
	assert.Equal(t, "[CRYPTO] Title: Title for bitcoin news\nDescription: Desc for bitcoin news", first.FinanceInfo)
	_, err = time.Parse(time.RFC3339, first.Timestamp)
	assert.NoError(t, err)

	last, ok := st.inserted[2].(model.NewsItem)
	require.True(t, ok)
	assert.Contains(t, last.FinanceInfo, "[FINANCE]")
}

func TestNewsCollector_InsertFailureDoesNotAbortBatch(t *testing.T) {
	categories := []Category{{Tag: "CRYPTO", Queries: []string{"q1", "q2", "q3"}}}
	search := &fakeSearch{}
	st := &fakeInserter{
		InsertFunc: func(_ context.Context, _ store.Collection, record any) error {
			if item := record.(model.NewsItem); item.FinanceInfo == "[CRYPTO] Title: Title for q2\nDescription: Desc for q2" {
				return store.ErrUnavailable
			}
			return nil
		},
	}

	summary, err := newsAgent(search, st, categories).Run(context.Background())
	require.NoError(t, err)

	// q2's insert failed but q3 was still attempted.
	assert.Equal(t, []string{"q1", "q2", "q3"}, search.queries)
	assert.Equal(t, RunSummary{Stored: 2, Failed: 1}, summary)
}

func TestNewsCollector_ProviderErrorTreatedAsNoNews(t *testing.T) {
	categories := []Category{{Tag: "FINANCE", Queries: []string{"q1", "q2"}}}
	search := &fakeSearch{
		TopResultFunc: func(_ context.Context, query string) (*fetcher.SearchResult, error) {
			if query == "q1" {
				return nil, errors.New("connection refused")
			}
			return &fetcher.SearchResult{Title: "ok"}, nil
		},
	}
	st := &fakeInserter{}

	summary, err := newsAgent(search, st, categories).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Stored: 1, Skipped: 1}, summary)
	assert.Len(t, st.inserted, 1)
}

func TestNewsCollector_EmptyResultsSkipped(t *testing.T) {
	categories := []Category{{Tag: "CRYPTO", Queries: []string{"q1", "q2"}}}
	search := &fakeSearch{
		TopResultFunc: func(_ context.Context, query string) (*fetcher.SearchResult, error) {
			switch query {
			case "q1":
				return nil, nil
			default:
				return &fetcher.SearchResult{}, nil
			}
		},
	}
	st := &fakeInserter{}

	summary, err := newsAgent(search, st, categories).Run(context.Background())
	require.NoError(t, err)

	// Neither an absent result nor an all-empty one may store an empty body.
	assert.Equal(t, RunSummary{Skipped: 2}, summary)
	assert.Empty(t, st.inserted)
}

func TestNewsCollector_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	categories := []Category{{Tag: "CRYPTO", Queries: []string{"q1"}}}
	st := &fakeInserter{}

	_, err := newsAgent(&fakeSearch{}, st, categories).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, st.inserted)
}

func TestNewsCollector_Pacing(t *testing.T) {
	gap := 30 * time.Millisecond
	categories := []Category{{Tag: "CRYPTO", Queries: []string{"q1", "q2", "q3"}}}
	search := &fakeSearch{}
	agent := NewNewsCollector(search, &fakeInserter{}, newsColl, categories, gap, zap.NewNop().Sugar())

	start := time.Now()
	_, err := agent.Run(context.Background())
	require.NoError(t, err)

	// Two gaps between three queries.
	assert.GreaterOrEqual(t, time.Since(start), 2*gap, fmt.Sprintf("queries not paced: %v", search.queries))
}
