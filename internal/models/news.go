package models

import (
	"time"
)

// CatalystTag is the coarse category assigned to a headline by keyword match
type CatalystTag string

const (
	CatalystFDA          CatalystTag = "FDA"
	CatalystEarnings     CatalystTag = "EARNINGS"
	CatalystOffering     CatalystTag = "OFFERING"
	CatalystMergers      CatalystTag = "M&A"
	CatalystPartnership  CatalystTag = "PARTNERSHIP"
	CatalystAnalyst      CatalystTag = "ANALYST"
	CatalystContract     CatalystTag = "CONTRACT"
	CatalystLegal        CatalystTag = "LEGAL"
	CatalystBuyback      CatalystTag = "BUYBACK"
	CatalystBankruptcy   CatalystTag = "BANKRUPTCY"
	CatalystListing      CatalystTag = "LISTING"
	CatalystReverseSplit CatalystTag = "REVERSE_SPLIT"
	CatalystFiling       CatalystTag = "FILING"
	CatalystDividend     CatalystTag = "DIVIDEND"
	CatalystLicense      CatalystTag = "LICENSE"

	// CatalystNone is used when no keyword matches
	CatalystNone CatalystTag = ""
)

// NewsSource identifies which adapter produced an item
type NewsSource string

const (
	NewsSourceExport  NewsSource = "export"
	NewsSourceFilings NewsSource = "filings"
	NewsSourceScrape  NewsSource = "scrape"
	NewsSourceFeed    NewsSource = "feed"
	NewsSourceAPI     NewsSource = "api"
)

// NewsItem is one headline observed for a ticker
type NewsItem struct {
	Ticker      string      `json:"ticker"`
	Headline    string      `json:"headline"`
	URL         string      `json:"url,omitempty"`
	Source      string      `json:"source,omitempty"` // Provider name or hostname
	PublishedAt *time.Time  `json:"publishedAt,omitempty"`
	CatalystTag CatalystTag `json:"catalystTag,omitempty"`
	Origin      NewsSource  `json:"origin,omitempty"`
}
