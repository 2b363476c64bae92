package news

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/models"
)

// DefaultMaxPerTicker is used when the configured cap is not positive
const DefaultMaxPerTicker = 8

// Normalizer merges per-source news lists into one tagged, deduplicated list
type Normalizer struct {
	maxPerTicker int
	now          func() time.Time
}

// NewNormalizer creates a normalizer that keeps at most maxPerTicker items per ticker
func NewNormalizer(maxPerTicker int) *Normalizer {
	if maxPerTicker <= 0 {
		maxPerTicker = DefaultMaxPerTicker
	}
	return &Normalizer{
		maxPerTicker: maxPerTicker,
		now:          time.Now,
	}
}

// WithClock replaces the clock used for generatedAt
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// MaxPerTicker returns the per-ticker cap
func (n *Normalizer) MaxPerTicker() int {
	return n.maxPerTicker
}

// Normalize merges sources and wraps the result as a generated payload.
func (n *Normalizer) Normalize(sources ...[]models.NewsItem) models.CachePayload[models.NewsItem] {
	return models.NewPayload(n.now(), n.Merge(sources...))
}

// Merge combines sources given in priority order (highest first).
//
//  1. A source contributes nothing for a ticker that already holds
//     maxPerTicker items from higher-priority sources.
//  2. Items are deduplicated on DedupKey within each ticker; the first
//     observation wins.
//  3. Each kept item is tagged via Classify.
//  4. Items are grouped by ticker (first-seen order), sorted newest first with
//     undated items last, and truncated to maxPerTicker.
func (n *Normalizer) Merge(sources ...[]models.NewsItem) []models.NewsItem {
	seen := make(map[string]bool)
	counts := make(map[string]int)
	groups := make(map[string][]models.NewsItem)
	var order []string

	for _, source := range sources {
		// Counts from higher-priority sources only
		full := make(map[string]bool)
		for ticker, count := range counts {
			if count >= n.maxPerTicker {
				full[ticker] = true
			}
		}

		for _, item := range source {
			ticker := common.NormalizeSymbol(item.Ticker)
			headline := strings.Join(strings.Fields(item.Headline), " ")
			if ticker == "" || headline == "" || full[ticker] {
				continue
			}

			item.Ticker = ticker
			item.Headline = headline
			item.URL = strings.TrimSpace(item.URL)

			// The window is per ticker, so one article may serve several
			key := ticker + "|" + DedupKey(item)
			if seen[key] {
				continue
			}
			seen[key] = true

			item.CatalystTag = Classify(item.Headline)

			if _, ok := groups[ticker]; !ok {
				order = append(order, ticker)
			}
			groups[ticker] = append(groups[ticker], item)
			counts[ticker]++
		}
	}

	merged := make([]models.NewsItem, 0, len(seen))
	for _, ticker := range order {
		group := groups[ticker]
		SortNewestFirst(group)
		if len(group) > n.maxPerTicker {
			group = group[:n.maxPerTicker]
		}
		merged = append(merged, group...)
	}
	return merged
}

// Full reports the tickers whose window the given sources already fill.
// Lower-priority sources need not be fetched for them.
func (n *Normalizer) Full(sources ...[]models.NewsItem) map[string]bool {
	full := make(map[string]bool)
	for ticker, group := range GroupByTicker(n.Merge(sources...)) {
		if len(group) >= n.maxPerTicker {
			full[ticker] = true
		}
	}
	return full
}

// SortNewestFirst orders items by PublishedAt descending. Items without a
// timestamp sort after all dated items; ties keep their input order.
func SortNewestFirst(items []models.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

// DedupKey is (url without query or fragment, uppercased headline with
// whitespace collapsed).
func DedupKey(item models.NewsItem) string {
	headline := strings.Join(strings.Fields(strings.ToUpper(item.Headline)), " ")
	return NormalizeURL(item.URL) + "|" + headline
}

// NormalizeURL drops the query string and fragment, lowercases scheme and
// host and trims a trailing slash. Unparseable input is returned trimmed.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		if idx := strings.IndexAny(raw, "?#"); idx >= 0 {
			return raw[:idx]
		}
		return raw
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return strings.TrimSuffix(u.String(), "/")
}

// GroupByTicker indexes merged items by ticker, preserving order
func GroupByTicker(items []models.NewsItem) map[string][]models.NewsItem {
	grouped := make(map[string][]models.NewsItem)
	for _, item := range items {
		grouped[item.Ticker] = append(grouped[item.Ticker], item)
	}
	return grouped
}

// TopCatalyst returns the tag of the first tagged item, assuming newest-first order
func TopCatalyst(items []models.NewsItem) models.CatalystTag {
	for _, item := range items {
		if item.CatalystTag != models.CatalystNone {
			return item.CatalystTag
		}
	}
	return models.CatalystNone
}
