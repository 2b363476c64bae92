package export

import (
	"strings"

	"github.com/ternarybob/gapper/internal/coerce"
	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/models"
)

// ParseNews parses a news export (ticker, date, time, headline, source, link
// in any order and naming). Rows without a ticker or headline are skipped.
func ParseNews(text string) []models.NewsItem {
	t := readTable(text)
	if t == nil {
		return []models.NewsItem{}
	}

	cols := resolveColumns(t.header, colTicker, colDate, colTime, colHeadline, colSource, colLink)
	if index(cols, colTicker) < 0 || index(cols, colHeadline) < 0 {
		return []models.NewsItem{}
	}

	items := make([]models.NewsItem, 0, len(t.rows))
	for _, row := range t.rows {
		headline := collapseSpace(cell(row, index(cols, colHeadline)))
		if headline == "" {
			continue
		}

		published := coerce.Timestamp(cell(row, index(cols, colDate)), cell(row, index(cols, colTime)))
		link := absoluteURL(cell(row, index(cols, colLink)))

		for _, ticker := range common.SplitSymbols(cell(row, index(cols, colTicker))) {
			items = append(items, models.NewsItem{
				Ticker:      ticker,
				Headline:    headline,
				URL:         link,
				Source:      cell(row, index(cols, colSource)),
				PublishedAt: published,
				Origin:      models.NewsSourceExport,
			})
		}
	}
	return items
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// absoluteURL keeps only http(s) links
func absoluteURL(link string) string {
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return link
	}
	return ""
}
