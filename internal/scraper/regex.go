package scraper

import (
	"regexp"
	"strings"

	"github.com/ternarybob/gapper/internal/models"
)

// anchorPattern tolerates unquoted and single-quoted hrefs, attributes in any
// order and markup inside the label
var anchorPattern = regexp.MustCompile(`(?is)<a\b[^>]*?\bhref\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s>]+))[^>]*>(.*?)</a\s*>`)

// RegexScraper matches anchors with regular expressions instead of building a
// DOM, so unbalanced or truncated markup still yields headlines.
type RegexScraper struct{}

// NewRegexScraper creates the tolerant regex scraper
func NewRegexScraper() *RegexScraper {
	return &RegexScraper{}
}

// Name identifies the scraper in logs
func (s *RegexScraper) Name() string {
	return "regex"
}

// Scrape extracts up to MaxItemsPerPage headlines for ticker from html.
// pageURL resolves relative links. A panic while scraping yields an empty list.
func (s *RegexScraper) Scrape(html, ticker, pageURL string) (items []models.NewsItem) {
	defer func() {
		if r := recover(); r != nil {
			items = []models.NewsItem{}
		}
	}()

	items = []models.NewsItem{}
	seen := make(map[string]bool)
	prevEnd := 0
	currentDate := ""

	for _, loc := range anchorPattern.FindAllStringSubmatchIndex(html, -1) {
		if len(items) >= MaxItemsPerPage {
			break
		}

		start, end := loc[0], loc[1]
		href := firstGroup(html, loc, 1, 2, 3)
		label := cleanLabel(html[loc[8]:loc[9]])

		windowStart := start - scanWindow
		if windowStart < prevEnd {
			windowStart = prevEnd
		}
		if windowStart < 0 {
			windowStart = 0
		}
		window := html[windowStart:start]

		if date := lastMatch(datePattern, window); date != "" {
			currentDate = date
		}

		if !acceptAnchor(href, label) {
			continue
		}

		link := resolveURL(pageURL, href)
		key := link + "|" + strings.ToUpper(label)
		if seen[key] {
			continue
		}
		seen[key] = true

		// A "(Source)" marker in the same row wins over the backward scan,
		// which can otherwise see the previous row's source
		source := trailingSource(html[end:])
		if source == "" {
			source = nearbySource(anchorPattern.ReplaceAllString(window, " "))
		}
		if source == "" && link != "" {
			source = hostname(link)
		}

		items = append(items, models.NewsItem{
			Ticker:      ticker,
			Headline:    label,
			URL:         link,
			Source:      source,
			PublishedAt: publishedAt(currentDate, lastMatch(timePattern, window)),
			Origin:      models.NewsSourceScrape,
		})
		prevEnd = end
	}

	return items
}

// firstGroup returns the first non-empty capture among groups
func firstGroup(text string, loc []int, groups ...int) string {
	for _, g := range groups {
		if loc[2*g] >= 0 {
			return text[loc[2*g]:loc[2*g+1]]
		}
	}
	return ""
}

// trailingSource looks for a "(Source)" marker in the rest of the row, up to
// the next anchor
func trailingSource(rest string) string {
	if len(rest) > 200 {
		rest = rest[:200]
	}
	if idx := strings.Index(strings.ToLower(rest), "<a "); idx >= 0 {
		rest = rest[:idx]
	}
	return lastMatch(trailingParen, cleanLabel(rest))
}
