package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/eodhd"
	"github.com/ternarybob/gapper/internal/models"
)

// EODHDNews reads headlines from the EODHD news endpoint
type EODHDNews struct {
	client *eodhd.Client
}

// NewEODHDNews creates an EODHD news provider
func NewEODHDNews(client *eodhd.Client) *EODHDNews {
	return &EODHDNews{client: client}
}

// Name implements NewsProvider
func (p *EODHDNews) Name() string {
	return "eodhd"
}

// News implements NewsProvider
func (p *EODHDNews) News(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	response, err := p.client.GetNews(ctx, []string{common.EODHDSymbol(ticker)}, eodhd.WithLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("eodhd news for %s: %w", ticker, err)
	}

	items := make([]models.NewsItem, 0, len(response))
	for _, article := range response {
		headline := strings.TrimSpace(article.Title)
		if headline == "" {
			continue
		}

		item := models.NewsItem{
			Ticker:   ticker,
			Headline: headline,
			URL:      article.Link,
			Source:   "eodhd",
			Origin:   models.NewsSourceAPI,
		}
		if u, err := url.Parse(article.Link); err == nil && u.Hostname() != "" {
			item.Source = strings.TrimPrefix(u.Hostname(), "www.")
		}
		if !article.Date.IsZero() {
			published := article.Date.UTC()
			item.PublishedAt = &published
		}
		items = append(items, item)
	}
	return items, nil
}
