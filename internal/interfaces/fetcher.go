package interfaces

import (
	"context"

	"github.com/ternarybob/gapper/internal/models"
)

// Fetcher retrieves a document as text
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// NewsScraper extracts headlines from an HTML page. Implementations never
// panic and return an empty list on failure.
type NewsScraper interface {
	Name() string
	Scrape(html, ticker, pageURL string) []models.NewsItem
}

// ConfidenceProvider rates a snapshot in [0,1]. A nil result means no rating.
type ConfidenceProvider interface {
	Name() string
	Confidence(ctx context.Context, snapshot models.StockSnapshot, news []models.NewsItem) (*float64, error)
}
