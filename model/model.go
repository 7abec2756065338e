package model

// PriceSample is one Bitcoin price observation, appended by the price agent.
// CreatedAt is assigned by the agent at insert time, in UTC RFC3339.
type PriceSample struct {
	Price     float64 `json:"price"`
	CreatedAt string  `json:"created_at"`
}

// NewsItem is one categorized news snippet, appended by the news agent.
// FinanceInfo carries the category tag, title and description in a single
// free-text column ("[CRYPTO] Title: ...\nDescription: ..."), which keeps the
// table shape compatible across deployments.
type NewsItem struct {
	FinanceInfo string `json:"finance_info"`
	Timestamp   string `json:"timestamp"`
}

// PricePoint is the public shape served to the dashboard for one sample.
type PricePoint struct {
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}

// NewsEntry is the public shape served to the dashboard for one news item.
// ID is the store-assigned row identifier, passed through opaquely; older
// deployments of the news table have no id column, so it is optional.
type NewsEntry struct {
	ID          any    `json:"id,omitempty"`
	FinanceInfo string `json:"finance_info"`
	Timestamp   string `json:"timestamp"`
}
