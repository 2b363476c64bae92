// Package feeds converts per-ticker syndication feeds (RSS or Atom) into news items.
package feeds

import (
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ternarybob/gapper/internal/coerce"
	"github.com/ternarybob/gapper/internal/models"
)

// MaxItemsPerFeed caps the items taken from one feed document
const MaxItemsPerFeed = 20

// Parse converts a feed document into news items for ticker. Items without a
// title are skipped; an unparseable document yields an empty list.
func Parse(document, ticker string) []models.NewsItem {
	items := []models.NewsItem{}
	if strings.TrimSpace(document) == "" {
		return items
	}

	feed, err := gofeed.NewParser().ParseString(document)
	if err != nil || feed == nil {
		return items
	}

	for _, entry := range feed.Items {
		if len(items) >= MaxItemsPerFeed {
			break
		}
		if entry == nil {
			continue
		}

		headline := strings.Join(strings.Fields(entry.Title), " ")
		if headline == "" {
			continue
		}

		link := absolute(strings.TrimSpace(entry.Link))

		items = append(items, models.NewsItem{
			Ticker:      ticker,
			Headline:    headline,
			URL:         link,
			Source:      source(entry, feed, link),
			PublishedAt: published(entry),
			Origin:      models.NewsSourceFeed,
		})
	}
	return items
}

// published prefers the parsed publish date, then the updated date, then a
// tolerant parse of the raw string
func published(entry *gofeed.Item) *time.Time {
	switch {
	case entry.PublishedParsed != nil:
		t := entry.PublishedParsed.UTC()
		return &t
	case entry.UpdatedParsed != nil:
		t := entry.UpdatedParsed.UTC()
		return &t
	case entry.Published != "":
		return coerce.Timestamp(entry.Published, "")
	}
	return nil
}

// source uses the item author, then the link host, then the feed title
func source(entry *gofeed.Item, feed *gofeed.Feed, link string) string {
	if entry.Author != nil && strings.TrimSpace(entry.Author.Name) != "" {
		return strings.TrimSpace(entry.Author.Name)
	}
	if link != "" {
		if u, err := url.Parse(link); err == nil && u.Hostname() != "" {
			return strings.TrimPrefix(u.Hostname(), "www.")
		}
	}
	return strings.TrimSpace(feed.Title)
}

func absolute(link string) string {
	u, err := url.Parse(link)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.String()
}
