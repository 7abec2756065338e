package digest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finboard/store"
)

type fakeRecords struct {
	FetchFunc func(ctx context.Context, coll store.Collection, limit int) ([]map[string]any, error)
}

func (f *fakeRecords) FetchLatest(ctx context.Context, coll store.Collection, limit int) ([]map[string]any, error) {
	return f.FetchFunc(ctx, coll, limit)
}

type fakeMailer struct {
	subject string
	text    string
	png     []byte
	err     error
	sends   int
}

func (f *fakeMailer) Send(_ context.Context, subject, text string, chartPNG []byte) error {
	f.sends++
	f.subject = subject
	f.text = text
	f.png = chartPNG
	return f.err
}

var (
	digestPriceColl = store.Collection{Table: "btc_price", OrderField: "created_at"}
	digestNewsColl  = store.Collection{Table: "eco_info", OrderField: "timestamp"}
)

func digestRecords(prices, news []map[string]any, err error) *fakeRecords {
	return &fakeRecords{
		FetchFunc: func(_ context.Context, coll store.Collection, _ int) ([]map[string]any, error) {
			if err != nil {
				return nil, err
			}
			if coll.Table == "btc_price" {
				return prices, nil
			}
			return news, nil
		},
	}
}

func TestDigest_Run(t *testing.T) {
	prices := []map[string]any{
		{"price": 44000.0, "created_at": "2026-08-30T10:00:00Z"},
		{"price": 43000.0, "created_at": "2026-08-30T04:00:00Z"},
		{"price": 40000.0, "created_at": "2026-08-29T22:00:00Z"},
	}
	news := []map[string]any{
		{"finance_info": "[CRYPTO] Title: BTC rallies\nDescription: Strong demand", "timestamp": "2026-08-30T09:00:00Z"},
		{"finance_info": "[FINANCE] Title: Fed holds\nDescription: Rates unchanged", "timestamp": "2026-08-30T08:00:00Z"},
	}
	mailer := &fakeMailer{}

	job := New(digestRecords(prices, news, nil), mailer, digestPriceColl, digestNewsColl, zap.NewNop().Sugar())
	require.NoError(t, job.Run(context.Background()))

	require.Equal(t, 1, mailer.sends)
	assert.True(t, strings.HasPrefix(mailer.subject, "Financial Market Update - "))
	assert.Contains(t, mailer.text, "Current Price: $44,000.00")
	assert.Contains(t, mailer.text, "+10.00%")
	assert.Contains(t, mailer.text, "BTC rallies")
	assert.Contains(t, mailer.text, "Strong demand")
	assert.Contains(t, mailer.text, "Fed holds")
	assert.NotEmpty(t, mailer.png)
}

func TestDigest_StoreFailureAborts(t *testing.T) {
	mailer := &fakeMailer{}
	job := New(digestRecords(nil, nil, store.ErrUnavailable), mailer, digestPriceColl, digestNewsColl, zap.NewNop().Sugar())

	err := job.Run(context.Background())
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.Zero(t, mailer.sends)
}

func TestDigest_NoPricesAborts(t *testing.T) {
	news := []map[string]any{
		{"finance_info": "[CRYPTO] Title: A", "timestamp": "2026-08-30T09:00:00Z"},
	}
	mailer := &fakeMailer{}
	job := New(digestRecords(nil, news, nil), mailer, digestPriceColl, digestNewsColl, zap.NewNop().Sugar())

	err := job.Run(context.Background())
	assert.Error(t, err)
	assert.Zero(t, mailer.sends)
}

// An empty news window must abort the run the same way an empty price window
// does; a digest of nothing but placeholder sections is never sent.
func TestDigest_NoNewsAborts(t *testing.T) {
	prices := []map[string]any{
		{"price": 44000.0, "created_at": "2026-08-30T10:00:00Z"},
		{"price": 43000.0, "created_at": "2026-08-30T04:00:00Z"},
	}
	mailer := &fakeMailer{}
	job := New(digestRecords(prices, nil, nil), mailer, digestPriceColl, digestNewsColl, zap.NewNop().Sugar())

	err := job.Run(context.Background())
	assert.Error(t, err)
	assert.Zero(t, mailer.sends)
}

func TestComposeSummary_EmptyCategories(t *testing.T) {
	prices := []pricePoint{{Price: 100}, {Price: 100}}
	text := composeSummary(prices, nil)

	assert.Contains(t, text, "No recent crypto news")
	assert.Contains(t, text, "No recent financial news")
	assert.Contains(t, text, "+0.00%")
}

func TestPickCategory(t *testing.T) {
	news := []string{
		"[CRYPTO] Title: one",
		"[FINANCE] Title: two",
		"[CRYPTO] Title: three",
		"[CRYPTO] Title: four",
	}

	crypto := pickCategory(news, "[CRYPTO]", 2)
	require.Len(t, crypto, 2)
	assert.Equal(t, "[CRYPTO] Title: one", crypto[0])
	assert.Equal(t, "[CRYPTO] Title: three", crypto[1])

	assert.Empty(t, pickCategory(news, "[ENERGY]", 2))
}

func TestSplitNewsItem(t *testing.T) {
	title, description := splitNewsItem("[CRYPTO] Title: BTC rallies\nDescription: Strong demand today")
	assert.Equal(t, "BTC rallies", title)
	assert.Equal(t, "Strong demand today", description)

	title, description = splitNewsItem("[FINANCE] Title: Headline only")
	assert.Equal(t, "Headline only", title)
	assert.Empty(t, description)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "42,000.50", formatAmount(42000.5))
	assert.Equal(t, "999.00", formatAmount(999))
	assert.Equal(t, "1,234,567.89", formatAmount(1234567.89))
	assert.Equal(t, "-1,000.00", formatAmount(-1000))
}

func TestRenderPriceChart(t *testing.T) {
	points := []pricePoint{
		{Price: 44000, At: mustParse(t, "2026-08-30T10:00:00Z")},
		{Price: 43000, At: mustParse(t, "2026-08-30T04:00:00Z")},
	}

	png, err := renderPriceChart(points)
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	_, err = renderPriceChart(points[:1])
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	for _, raw := range []string{
		"2026-08-30T10:00:00Z",
		"2026-08-30T10:00:00+02:00",
		"2026-08-30T10:00:00.123456",
		"2026-08-30T10:00:00",
	} {
		_, err := parseTimestamp(raw)
		assert.NoError(t, err, raw)
	}

	_, err := parseTimestamp("yesterday")
	assert.Error(t, err)
}

func mustParse(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := parseTimestamp(raw)
	require.NoError(t, err)
	return parsed
}
