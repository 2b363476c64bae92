package sources

import (
	"context"

	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/feeds"
	"github.com/ternarybob/gapper/internal/models"
)

// ScrapeNews fetches the quote page of ticker and extracts its headlines
func (s *Service) ScrapeNews(ctx context.Context, ticker string) (items []models.NewsItem) {
	if s.config.QuotePageURL == "" || s.scraper == nil {
		return nil
	}

	pageURL := common.ExpandTemplate(s.config.QuotePageURL, ticker)
	html, err := s.pages.Fetch(ctx, pageURL)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Str("source", "scrape").Msg("Quote page unavailable")
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn().Str("ticker", ticker).Str("scraper", s.scraper.Name()).Msgf("Scraper panicked: %v", r)
			items = nil
		}
	}()
	return s.scraper.Scrape(html, ticker, pageURL)
}

// FeedNews fetches the syndication feed of ticker
func (s *Service) FeedNews(ctx context.Context, ticker string) []models.NewsItem {
	if s.config.FeedURL == "" {
		return nil
	}

	document, err := s.fetcher.Fetch(ctx, common.ExpandTemplate(s.config.FeedURL, ticker))
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Str("source", "feed").Msg("Feed unavailable")
		return nil
	}
	return feeds.Parse(document, ticker)
}

// APINews reads headlines for ticker from the configured news provider
func (s *Service) APINews(ctx context.Context, ticker string, limit int) []models.NewsItem {
	if s.news == nil {
		return nil
	}

	items, err := s.news.News(ctx, ticker, limit)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Str("source", s.news.Name()).Msg("News API unavailable")
		return nil
	}
	return items
}
