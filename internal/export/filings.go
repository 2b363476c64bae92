package export

import (
	"github.com/ternarybob/gapper/internal/coerce"
	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/models"
)

// filingsSource is reported as the source of every filings-export item
const filingsSource = "SEC"

// ParseFilings parses a filings export (ticker, form, title, link, date) into
// news items whose headline leads with the form type, e.g. "8-K: Entry into
// a Material Agreement".
func ParseFilings(text string) []models.NewsItem {
	t := readTable(text)
	if t == nil {
		return []models.NewsItem{}
	}

	cols := resolveColumns(t.header, colTicker, colForm, colHeadline, colLink, colDate, colTime)
	if index(cols, colTicker) < 0 {
		return []models.NewsItem{}
	}
	if index(cols, colForm) < 0 && index(cols, colHeadline) < 0 {
		return []models.NewsItem{}
	}

	items := make([]models.NewsItem, 0, len(t.rows))
	for _, row := range t.rows {
		form := collapseSpace(cell(row, index(cols, colForm)))
		title := collapseSpace(cell(row, index(cols, colHeadline)))

		headline := title
		switch {
		case form != "" && title != "":
			headline = form + ": " + title
		case form != "":
			headline = form + " filing"
		}
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
				Source:      filingsSource,
				PublishedAt: published,
				Origin:      models.NewsSourceFilings,
			})
		}
	}
	return items
}
