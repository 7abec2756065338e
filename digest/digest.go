package digest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"finboard/store"
)

// Fetch windows for the daily summary.
const (
	priceWindow = 5
	newsWindow  = 10
)

// RecordSource is the read side of the store adapter.
type RecordSource interface {
	FetchLatest(ctx context.Context, coll store.Collection, limit int) ([]map[string]any, error)
}

// Mailer delivers the finished digest.
type Mailer interface {
	Send(ctx context.Context, subject, text string, chartPNG []byte) error
}

// pricePoint is one parsed sample inside the digest window.
type pricePoint struct {
	Price float64
	At    time.Time
}

// Digest reads the latest records back from the store and mails a daily
// summary with a price chart. Any failing step aborts the run; a partial
// digest is never sent.
type Digest struct {
	records   RecordSource
	mailer    Mailer
	priceColl store.Collection
	newsColl  store.Collection
	logger    *zap.SugaredLogger
}

func New(records RecordSource, mailer Mailer, priceColl, newsColl store.Collection, logger *zap.SugaredLogger) *Digest {
	return &Digest{
		records:   records,
		mailer:    mailer,
		priceColl: priceColl,
		newsColl:  newsColl,
		logger:    logger,
	}
}

func (d *Digest) Run(ctx context.Context) error {
	priceRows, err := d.records.FetchLatest(ctx, d.priceColl, priceWindow)
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}
	newsRows, err := d.records.FetchLatest(ctx, d.newsColl, newsWindow)
	if err != nil {
		return fmt.Errorf("fetch news: %w", err)
	}
	if len(newsRows) == 0 {
		return fmt.Errorf("no news items to summarize")
	}

	prices := d.parsePrices(priceRows)
	if len(prices) == 0 {
		return fmt.Errorf("no price samples to summarize")
	}

	text := composeSummary(prices, newsTexts(newsRows))

	png, err := renderPriceChart(prices)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	subject := fmt.Sprintf("Financial Market Update - %s", time.Now().Format("2006-01-02"))
	if err := d.mailer.Send(ctx, subject, text, png); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	d.logger.Infow("digest sent", "prices", len(prices), "news", len(newsRows))
	return nil
}

// parsePrices reshapes raw rows into chartable points, dropping rows that
// won't coerce, newest first as fetched.
func (d *Digest) parsePrices(rows []map[string]any) []pricePoint {
	points := make([]pricePoint, 0, len(rows))
	for _, row := range rows {
		price, ok := toFloat(row["price"])
		if !ok {
			d.logger.Warnw("skipping malformed price row", "row", row)
			continue
		}
		raw, _ := row[d.priceColl.OrderField].(string)
		at, err := parseTimestamp(raw)
		if err != nil {
			d.logger.Warnw("skipping price row with bad timestamp", "row", row)
			continue
		}
		points = append(points, pricePoint{Price: price, At: at})
	}
	return points
}

func newsTexts(rows []map[string]any) []string {
	texts := make([]string, 0, len(rows))
	for _, row := range rows {
		if info, ok := row["finance_info"].(string); ok && info != "" {
			texts = append(texts, info)
		}
	}
	return texts
}

// composeSummary builds the plain-text body: current price, change across
// the window, and the two freshest items per category.
func composeSummary(prices []pricePoint, news []string) string {
	latest := prices[0].Price
	oldest := prices[len(prices)-1].Price
	var change float64
	if oldest != 0 {
		change = (latest - oldest) / oldest * 100
	}

	crypto := pickCategory(news, "[CRYPTO]", 2)
	finance := pickCategory(news, "[FINANCE]", 2)

	var b strings.Builder
	b.WriteString("Hello,\n\nHere is your daily financial market update.\n\n")
	b.WriteString("Bitcoin Market Summary\n---------------------\n")
	fmt.Fprintf(&b, "Current Price: $%s\n", formatAmount(latest))
	fmt.Fprintf(&b, "Change Over Window: %+.2f%%\n\n", change)

	b.WriteString("Cryptocurrency News\n------------------\n")
	writeNewsSection(&b, crypto, "No recent crypto news")

	b.WriteString("\nFinancial Market Updates\n-----------------------\n")
	writeNewsSection(&b, finance, "No recent financial news")

	b.WriteString("\nBest regards,\nfinboard\n")
	return b.String()
}

func writeNewsSection(b *strings.Builder, items []string, empty string) {
	if len(items) == 0 {
		fmt.Fprintf(b, "- %s\n", empty)
		return
	}
	for _, item := range items {
		title, description := splitNewsItem(item)
		fmt.Fprintf(b, "- %s\n", title)
		if description != "" {
			fmt.Fprintf(b, "  %s\n", description)
		}
	}
}

// pickCategory keeps the first n items carrying the category marker.
func pickCategory(news []string, marker string, n int) []string {
	var picked []string
	for _, item := range news {
		if strings.Contains(item, marker) {
			picked = append(picked, item)
			if len(picked) == n {
				break
			}
		}
	}
	return picked
}

// splitNewsItem strips the category marker and labels from a stored item and
// splits it back into its title and description lines.
func splitNewsItem(item string) (title, description string) {
	info := item
	for _, marker := range []string{"[CRYPTO]", "[FINANCE]", "Title:"} {
		info = strings.ReplaceAll(info, marker, "")
	}
	info = strings.TrimSpace(info)

	parts := strings.SplitN(info, "Description:", 2)
	title = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		description = strings.TrimSpace(parts[1])
	}
	return title, description
}

// formatAmount renders a price with thousands separators, two decimals.
func formatAmount(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func toFloat(v any) (float64, bool) {
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

// parseTimestamp accepts the timestamp shapes the tables have held across
// deployments: RFC3339 with or without offset or fraction.
func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
