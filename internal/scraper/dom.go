package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/gapper/internal/models"
)

// DOMScraper walks a parsed document instead of matching raw markup. It reads
// the time and source from the anchor's table row, which suits well-formed
// news tables.
type DOMScraper struct{}

// NewDOMScraper creates the goquery based scraper
func NewDOMScraper() *DOMScraper {
	return &DOMScraper{}
}

// Name identifies the scraper in logs
func (s *DOMScraper) Name() string {
	return "dom"
}

// Scrape extracts up to MaxItemsPerPage headlines for ticker from html.
// Parse failures and panics yield an empty list.
func (s *DOMScraper) Scrape(html, ticker, pageURL string) (items []models.NewsItem) {
	defer func() {
		if r := recover(); r != nil {
			items = []models.NewsItem{}
		}
	}()

	items = []models.NewsItem{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return items
	}

	seen := make(map[string]bool)
	currentDate := ""

	doc.Find("a[href]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(items) >= MaxItemsPerPage {
			return false
		}

		href, _ := sel.Attr("href")
		label := strings.Join(strings.Fields(sel.Text()), " ")

		row := sel.Closest("tr")
		if row.Length() == 0 {
			row = sel.Parent()
		}

		// Date cells only appear on the first row of each day
		leading := row.Find("td").First().Text()
		if date := lastMatch(datePattern, leading); date != "" {
			currentDate = date
		}

		if !acceptAnchor(href, label) {
			return true
		}

		link := resolveURL(pageURL, href)
		key := link + "|" + strings.ToUpper(label)
		if seen[key] {
			return true
		}
		seen[key] = true

		source := rowSource(row, label)
		if source == "" && link != "" {
			source = hostname(link)
		}

		items = append(items, models.NewsItem{
			Ticker:      ticker,
			Headline:    label,
			URL:         link,
			Source:      source,
			PublishedAt: publishedAt(currentDate, lastMatch(timePattern, leading)),
			Origin:      models.NewsSourceScrape,
		})
		return true
	})

	return items
}

// rowSource returns the last short capitalized span in the row, unwrapped
// from parentheses
func rowSource(row *goquery.Selection, label string) string {
	source := ""
	row.Find("span").Each(func(i int, span *goquery.Selection) {
		text := strings.TrimSpace(span.Text())
		text = strings.TrimSuffix(strings.TrimPrefix(text, "("), ")")
		if text == "" || text == label || len(text) > 30 {
			return
		}
		if text[0] < 'A' || text[0] > 'Z' || timePattern.MatchString(text) {
			return
		}
		source = text
	})
	return source
}
