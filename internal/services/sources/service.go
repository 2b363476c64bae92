// Package sources wraps every upstream the poll reads from. Each method
// degrades to an empty result and logs a warning; none of them return errors.
package sources

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/export"
	"github.com/ternarybob/gapper/internal/interfaces"
	"github.com/ternarybob/gapper/internal/models"
	"github.com/ternarybob/gapper/internal/technicals"
)

// Service reads snapshots, news and bars for a poll cycle
type Service struct {
	config   common.SourcesConfig
	fetcher  interfaces.Fetcher
	pages    interfaces.Fetcher
	scraper  interfaces.NewsScraper
	news     interfaces.NewsProvider
	bars     interfaces.BarSource
	enricher *technicals.Enricher
	avgDays  int
	logger   arbor.ILogger
}

// NewService creates a source service. Quote pages are fetched with fetcher
// unless WithPageFetcher supplies another one.
func NewService(config common.SourcesConfig, fetcher interfaces.Fetcher, scraper interfaces.NewsScraper, logger arbor.ILogger) *Service {
	return &Service{
		config:  config,
		fetcher: fetcher,
		pages:   fetcher,
		scraper: scraper,
		logger:  logger,
	}
}

// WithPageFetcher sets the fetcher used for quote pages
func (s *Service) WithPageFetcher(pages interfaces.Fetcher) *Service {
	if pages != nil {
		s.pages = pages
	}
	return s
}

// WithNewsProvider adds an API news source
func (s *Service) WithNewsProvider(provider interfaces.NewsProvider) *Service {
	s.news = provider
	return s
}

// WithBars enables technical enrichment from a bar provider
func (s *Service) WithBars(bars interfaces.BarSource, enricher *technicals.Enricher, avgDays int) *Service {
	s.bars = bars
	s.enricher = enricher
	s.avgDays = avgDays
	return s
}

// HasBars reports whether enrichment is enabled
func (s *Service) HasBars() bool {
	return s.bars != nil && s.enricher != nil
}

// Snapshots fetches and parses the screener export. ok is false when no
// export is configured or the fetch failed, so callers can fall back to
// a fixed universe.
func (s *Service) Snapshots(ctx context.Context, asOf time.Time) (snapshots []models.StockSnapshot, ok bool) {
	if s.config.ExportURL == "" {
		return nil, false
	}

	text, err := s.fetcher.Fetch(ctx, s.config.ExportURL)
	if err != nil {
		s.logger.Warn().Err(err).Str("source", "export").Msg("Screener export unavailable")
		return nil, false
	}

	snapshots = export.ParseSnapshots(text, asOf)
	s.logger.Debug().Int("rows", len(snapshots)).Msg("Parsed screener export")
	return snapshots, true
}

// ExportNews fetches the news export
func (s *Service) ExportNews(ctx context.Context) []models.NewsItem {
	text, ok := s.fetchOptional(ctx, s.config.NewsExportURL, "news_export")
	if !ok {
		return nil
	}
	return export.ParseNews(text)
}

// Filings fetches the filings export
func (s *Service) Filings(ctx context.Context) []models.NewsItem {
	text, ok := s.fetchOptional(ctx, s.config.FilingsURL, "filings")
	if !ok {
		return nil
	}
	return export.ParseFilings(text)
}

func (s *Service) fetchOptional(ctx context.Context, url, source string) (string, bool) {
	if url == "" {
		return "", false
	}
	text, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Warn().Err(err).Str("source", source).Msg("Export unavailable")
		return "", false
	}
	return text, true
}
