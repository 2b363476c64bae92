// Package pipeline runs one poll cycle: read the candidate universe, enrich
// and gather news per ticker, rate, score, then publish both payloads.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/ternarybob/gapper/internal/cache"
	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/interfaces"
	"github.com/ternarybob/gapper/internal/models"
	"github.com/ternarybob/gapper/internal/news"
	"github.com/ternarybob/gapper/internal/scoring"
	"github.com/ternarybob/gapper/internal/services/sources"
)

// Summary describes a finished poll cycle
type Summary struct {
	CycleID       string                   `json:"cycleId"`
	GeneratedAt   time.Time                `json:"generatedAt"`
	Duration      time.Duration            `json:"duration"`
	Sources       []string                 `json:"sources"`
	Candidates    int                      `json:"candidates"`
	NewsItems     int                      `json:"newsItems"`
	ScoresWritten bool                     `json:"scoresWritten"`
	NewsWritten   bool                     `json:"newsWritten"`
	Top           []models.ScoredCandidate `json:"top,omitempty"`
}

// Service runs poll cycles
type Service struct {
	sources    *sources.Service
	confidence interfaces.ConfidenceProvider
	store      *cache.Store
	archive    interfaces.ArchiveStorage
	normalizer *news.Normalizer
	scoring    scoring.Config
	config     common.PipelineConfig
	logger     arbor.ILogger
	now        func() time.Time

	// One cycle at a time per process
	running sync.Mutex
}

// NewService creates a pipeline. archive may be nil.
func NewService(
	src *sources.Service,
	confidence interfaces.ConfidenceProvider,
	store *cache.Store,
	archive interfaces.ArchiveStorage,
	normalizer *news.Normalizer,
	scoringConfig scoring.Config,
	config common.PipelineConfig,
	logger arbor.ILogger,
) *Service {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &Service{
		sources:    src,
		confidence: confidence,
		store:      store,
		archive:    archive,
		normalizer: normalizer,
		scoring:    scoringConfig,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for generatedAt
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// tickerWork is the per-ticker output of the fan-out
type tickerWork struct {
	snapshot models.StockSnapshot
	scraped  []models.NewsItem
	feed     []models.NewsItem
	api      []models.NewsItem
}

// Poll runs one cycle. Source failures only shrink the output; an error is
// returned only when a payload could not be written.
func (s *Service) Poll(ctx context.Context) (*Summary, error) {
	s.running.Lock()
	defer s.running.Unlock()

	cycleID := uuid.New().String()
	generatedAt := s.now().UTC()
	logger := s.logger.WithCorrelationId(cycleID)
	logger.Info().Msg("Poll cycle started")

	var used []string
	snapshots, ok := s.sources.Snapshots(ctx, generatedAt)
	if ok {
		used = append(used, "export")
	} else {
		snapshots = s.universe(generatedAt)
		if len(snapshots) > 0 {
			used = append(used, "universe")
		}
	}
	snapshots = s.selectCandidates(snapshots)

	var (
		exportNews []models.NewsItem
		filings    []models.NewsItem
		work       = make([]tickerWork, len(snapshots))
	)

	var g errgroup.Group
	g.SetLimit(s.config.Concurrency)
	g.Go(func() error {
		defer common.RecoverPanic(logger, "news_export")
		exportNews = s.sources.ExportNews(ctx)
		return nil
	})
	g.Go(func() error {
		defer common.RecoverPanic(logger, "filings")
		filings = s.sources.Filings(ctx)
		return nil
	})

	for i, snapshot := range snapshots {
		work[i].snapshot = snapshot
		g.Go(func() error {
			defer common.RecoverPanic(logger, "ticker:"+snapshot.Ticker)
			work[i].snapshot = s.sources.Enrich(ctx, snapshot, generatedAt)
			return nil
		})
	}
	// Workers never return errors; a failed ticker keeps its export row
	_ = g.Wait()

	// Tickers already filled by the exports skip the per-ticker fetches
	full := s.normalizer.Full(exportNews, filings)
	var ng errgroup.Group
	ng.SetLimit(s.config.Concurrency)
	for i := range work {
		ticker := work[i].snapshot.Ticker
		if full[common.NormalizeSymbol(ticker)] {
			logger.Debug().Str("ticker", ticker).Msg("News window filled by exports")
			continue
		}
		ng.Go(func() error {
			defer common.RecoverPanic(logger, "news:"+ticker)
			s.gather(ctx, &work[i])
			return nil
		})
	}
	_ = ng.Wait()

	// Sources in priority order, highest first
	var scraped, feed, api []models.NewsItem
	for _, w := range work {
		scraped = append(scraped, w.scraped...)
		feed = append(feed, w.feed...)
		api = append(api, w.api...)
	}
	merged := s.normalizer.Merge(exportNews, filings, scraped, feed, api)
	used = appendIf(used, "news_export", len(exportNews) > 0)
	used = appendIf(used, "filings", len(filings) > 0)
	used = appendIf(used, "scrape", len(scraped) > 0)
	used = appendIf(used, "feed", len(feed) > 0)
	used = appendIf(used, "api", len(api) > 0)

	byTicker := news.GroupByTicker(merged)
	candidates := s.score(ctx, logger, work, byTicker)

	summary := &Summary{
		CycleID:     cycleID,
		GeneratedAt: generatedAt,
		Sources:     used,
		Candidates:  len(candidates),
		NewsItems:   len(merged),
		Top:         top(candidates, 5),
	}

	var writeErrs []error
	written, err := s.store.SetScores(ctx, models.NewPayload(generatedAt, candidates))
	if err != nil {
		writeErrs = append(writeErrs, err)
	}
	summary.ScoresWritten = written

	written, err = s.store.SetNews(ctx, models.NewPayload(generatedAt, merged))
	if err != nil {
		writeErrs = append(writeErrs, err)
	}
	summary.NewsWritten = written

	summary.Duration = s.now().Sub(generatedAt)

	if s.archive != nil && summary.ScoresWritten {
		run := &models.ScoreRun{
			ID:          cycleID,
			GeneratedAt: generatedAt,
			Duration:    summary.Duration,
			Sources:     used,
			Candidates:  candidates,
		}
		if err := s.archive.SaveRun(ctx, run); err != nil {
			logger.Warn().Err(err).Msg("Failed to archive scored run")
		}
	}

	if err := errors.Join(writeErrs...); err != nil {
		logger.Error().Err(err).Msg("Poll cycle failed to publish")
		return summary, fmt.Errorf("poll %s: %w", cycleID, err)
	}

	logger.Info().
		Int("candidates", summary.Candidates).
		Int("news", summary.NewsItems).
		Strs("sources", used).
		Dur("duration", summary.Duration).
		Msg("Poll cycle complete")
	return summary, nil
}

// gather collects the per-ticker news of one snapshot
func (s *Service) gather(ctx context.Context, w *tickerWork) {
	ticker := w.snapshot.Ticker
	w.scraped = s.sources.ScrapeNews(ctx, ticker)
	w.feed = s.sources.FeedNews(ctx, ticker)
	w.api = s.sources.APINews(ctx, ticker, s.normalizer.MaxPerTicker())
}

// score rates every snapshot and returns candidates ranked by action score
func (s *Service) score(ctx context.Context, logger arbor.ILogger, work []tickerWork, byTicker map[string][]models.NewsItem) []models.ScoredCandidate {
	ratings := make([]*float64, len(work))

	if s.confidence != nil {
		var g errgroup.Group
		g.SetLimit(s.config.Concurrency)
		for i := range work {
			g.Go(func() error {
				defer common.RecoverPanic(logger, "confidence:"+work[i].snapshot.Ticker)
				rating, err := s.confidence.Confidence(ctx, work[i].snapshot, byTicker[work[i].snapshot.Ticker])
				if err != nil {
					logger.Warn().
						Err(err).
						Str("ticker", work[i].snapshot.Ticker).
						Str("provider", s.confidence.Name()).
						Msg("Confidence unavailable")
					return nil
				}
				ratings[i] = rating
				return nil
			})
		}
		_ = g.Wait()
	}

	candidates := make([]models.ScoredCandidate, 0, len(work))
	for i, w := range work {
		ticker := w.snapshot.Ticker
		candidates = append(candidates, scoring.Candidate(w.snapshot, ratings[i], news.TopCatalyst(byTicker[ticker]), s.scoring))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ActionScore != candidates[j].ActionScore {
			return candidates[i].ActionScore > candidates[j].ActionScore
		}
		return candidates[i].Ticker < candidates[j].Ticker
	})
	return candidates
}

// universe builds bare snapshots from the configured fallback tickers
func (s *Service) universe(asOf time.Time) []models.StockSnapshot {
	tickers := common.NormalizeSymbols(s.config.Universe)
	snapshots := make([]models.StockSnapshot, 0, len(tickers))
	for _, ticker := range tickers {
		snapshots = append(snapshots, models.StockSnapshot{Ticker: ticker, AsOf: asOf})
	}
	return snapshots
}

// selectCandidates drops duplicate tickers and known prices outside the
// band, then caps the list. Rows without a price are kept.
func (s *Service) selectCandidates(snapshots []models.StockSnapshot) []models.StockSnapshot {
	seen := make(map[string]bool, len(snapshots))
	selected := make([]models.StockSnapshot, 0, len(snapshots))
	for _, snapshot := range snapshots {
		if snapshot.Ticker == "" || seen[snapshot.Ticker] {
			continue
		}
		seen[snapshot.Ticker] = true

		if !InPriceBand(snapshot.Price, s.config.PriceMin, s.config.PriceMax) {
			continue
		}
		selected = append(selected, snapshot)
		if s.config.MaxTickers > 0 && len(selected) >= s.config.MaxTickers {
			break
		}
	}
	return selected
}

// InPriceBand reports whether price lies in [min, max]. A nil price passes;
// a max of zero disables the upper bound.
func InPriceBand(price *float64, min, max float64) bool {
	if price == nil {
		return true
	}
	if *price < min {
		return false
	}
	return max <= 0 || *price <= max
}

func appendIf(list []string, value string, ok bool) []string {
	if ok {
		return append(list, value)
	}
	return list
}

func top(candidates []models.ScoredCandidate, n int) []models.ScoredCandidate {
	if len(candidates) < n {
		n = len(candidates)
	}
	return candidates[:n]
}
