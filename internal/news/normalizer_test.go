package news

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/gapper/internal/export"
	"github.com/ternarybob/gapper/internal/models"
)

func at(hour, minute int) *time.Time {
	t := time.Date(2025, 9, 10, hour, minute, 0, 0, time.UTC)
	return &t
}

func fixedNormalizer(max int) *Normalizer {
	now := time.Date(2025, 9, 10, 15, 0, 0, 0, time.UTC)
	return NewNormalizer(max).WithClock(func() time.Time { return now })
}

func TestNormalize_DeduplicatesOnURLAndHeadline(t *testing.T) {
	export := []models.NewsItem{
		{Ticker: "ABCD", Headline: "ABCD Receives FDA Approval", URL: "https://x.test/a?utm=1", Source: "Export"},
	}
	feed := []models.NewsItem{
		{Ticker: "abcd", Headline: "abcd receives   fda approval", URL: "https://X.test/a?utm=2#top", Source: "Feed"},
		{Ticker: "ABCD", Headline: "ABCD Receives FDA Approval", URL: "https://x.test/other"},
	}

	payload := fixedNormalizer(8).Normalize(export, feed)
	require.NotNil(t, payload.GeneratedAt)
	require.Len(t, payload.Items, 2)

	// First observation wins
	assert.Equal(t, "Export", payload.Items[0].Source)
	assert.Equal(t, "https://x.test/other", payload.Items[1].URL)
}

func TestMerge_SharedArticleKeptPerTicker(t *testing.T) {
	export := []models.NewsItem{
		{Ticker: "AAPL", Headline: "Apple and Microsoft sign cloud partnership", URL: "https://x.test/a"},
		{Ticker: "MSFT", Headline: "Apple and Microsoft sign cloud partnership", URL: "https://x.test/a"},
	}
	feed := []models.NewsItem{
		{Ticker: "MSFT", Headline: "Apple and Microsoft sign cloud partnership", URL: "https://x.test/a?src=rss"},
	}

	merged := fixedNormalizer(8).Merge(export, feed)
	require.Len(t, merged, 2)
	assert.Equal(t, "AAPL", merged[0].Ticker)
	assert.Equal(t, "MSFT", merged[1].Ticker)
}

func TestMerge_MultiTickerExportRow(t *testing.T) {
	items := export.ParseNews("Ticker;Date;Time;Headline;Link\n" +
		"\"AAPL,MSFT\";09/10/2025;08:33AM;Apple and Microsoft sign cloud partnership;https://x.test/a\n")
	require.Len(t, items, 2)

	merged := fixedNormalizer(8).Merge(items)
	require.Len(t, merged, 2)
	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, []string{merged[0].Ticker, merged[1].Ticker})
}

func TestFull(t *testing.T) {
	export := []models.NewsItem{
		{Ticker: "AAA", Headline: "AAA first headline here", URL: "https://x.test/1"},
		{Ticker: "AAA", Headline: "AAA second headline here", URL: "https://x.test/2"},
		{Ticker: "BBB", Headline: "BBB only headline here", URL: "https://x.test/3"},
	}

	full := fixedNormalizer(2).Full(export)
	assert.True(t, full["AAA"])
	assert.False(t, full["BBB"])
}

func TestNormalize_TagsAndNormalizesTicker(t *testing.T) {
	items := []models.NewsItem{
		{Ticker: " abcd ", Headline: "ABCD  Announces Public Offering", CatalystTag: models.CatalystFDA},
	}

	payload := fixedNormalizer(8).Normalize(items)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "ABCD", payload.Items[0].Ticker)
	assert.Equal(t, "ABCD Announces Public Offering", payload.Items[0].Headline)
	assert.Equal(t, models.CatalystOffering, payload.Items[0].CatalystTag)
}

func TestNormalize_DropsItemsWithoutTickerOrHeadline(t *testing.T) {
	items := []models.NewsItem{
		{Ticker: "", Headline: "Orphan headline with no ticker"},
		{Ticker: "ABCD", Headline: "   "},
		{Ticker: "ABCD", Headline: "Valid headline for ABCD"},
	}

	payload := fixedNormalizer(8).Normalize(items)
	require.Len(t, payload.Items, 1)
}

func TestNormalize_SortsNewestFirstWithUndatedLast(t *testing.T) {
	items := []models.NewsItem{
		{Ticker: "ABCD", Headline: "Undated one", URL: "https://x.test/1"},
		{Ticker: "ABCD", Headline: "Oldest item", URL: "https://x.test/2", PublishedAt: at(7, 0)},
		{Ticker: "ABCD", Headline: "Undated two", URL: "https://x.test/3"},
		{Ticker: "ABCD", Headline: "Newest item", URL: "https://x.test/4", PublishedAt: at(9, 30)},
		{Ticker: "ABCD", Headline: "Middle item", URL: "https://x.test/5", PublishedAt: at(8, 0)},
	}

	payload := fixedNormalizer(8).Normalize(items)

	var headlines []string
	for _, item := range payload.Items {
		headlines = append(headlines, item.Headline)
	}
	assert.Equal(t, []string{"Newest item", "Middle item", "Oldest item", "Undated one", "Undated two"}, headlines)
}

func TestNormalize_CapsPerTicker(t *testing.T) {
	var items []models.NewsItem
	for i := 0; i < 10; i++ {
		items = append(items, models.NewsItem{
			Ticker:      "ABCD",
			Headline:    fmt.Sprintf("Headline %d", i),
			PublishedAt: at(8, i),
		})
	}
	items = append(items, models.NewsItem{Ticker: "EFGH", Headline: "Only EFGH item"})

	payload := fixedNormalizer(3).Normalize(items)
	require.Len(t, payload.Items, 4)
	assert.Equal(t, "Headline 9", payload.Items[0].Headline)
	assert.Equal(t, "Headline 7", payload.Items[2].Headline)
	assert.Equal(t, "EFGH", payload.Items[3].Ticker)
}

func TestNormalize_LowerPrioritySourceSkippedWhenTickerFull(t *testing.T) {
	export := []models.NewsItem{
		{Ticker: "ABCD", Headline: "Export headline one", PublishedAt: at(7, 0)},
		{Ticker: "ABCD", Headline: "Export headline two", PublishedAt: at(7, 5)},
	}
	scrape := []models.NewsItem{
		{Ticker: "ABCD", Headline: "Newer scraped headline", PublishedAt: at(9, 0)},
		{Ticker: "EFGH", Headline: "Scraped headline for EFGH"},
	}

	payload := fixedNormalizer(2).Normalize(export, scrape)
	require.Len(t, payload.Items, 3)

	// The newer scraped item is not allowed to displace full export coverage
	assert.Equal(t, "Export headline two", payload.Items[0].Headline)
	assert.Equal(t, "Export headline one", payload.Items[1].Headline)
	assert.Equal(t, "EFGH", payload.Items[2].Ticker)
}

func TestNormalize_NoSourcesStillGenerated(t *testing.T) {
	payload := fixedNormalizer(8).Normalize()
	require.NotNil(t, payload.GeneratedAt)
	assert.Equal(t, time.Date(2025, 9, 10, 15, 0, 0, 0, time.UTC), *payload.GeneratedAt)
	assert.NotNil(t, payload.Items)
	assert.Empty(t, payload.Items)
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"https://X.test/a?utm=1#frag": "https://x.test/a",
		"https://x.test/a/":           "https://x.test/a",
		"":                            "",
		"  https://x.test/b  ":        "https://x.test/b",
	}
	for input, want := range tests {
		assert.Equal(t, want, NormalizeURL(input), input)
	}
}

func TestDedupKey_IgnoresCaseAndWhitespace(t *testing.T) {
	a := models.NewsItem{Headline: "ABCD  Wins Contract", URL: "https://x.test/a?x=1"}
	b := models.NewsItem{Headline: "abcd wins\tcontract", URL: "https://x.test/a"}
	assert.Equal(t, DedupKey(a), DedupKey(b))
}

func TestTopCatalyst(t *testing.T) {
	items := []models.NewsItem{
		{CatalystTag: models.CatalystNone},
		{CatalystTag: models.CatalystEarnings},
		{CatalystTag: models.CatalystFDA},
	}
	assert.Equal(t, models.CatalystEarnings, TopCatalyst(items))
	assert.Equal(t, models.CatalystNone, TopCatalyst(nil))
}
