package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/bars"
	"github.com/ternarybob/gapper/internal/cache"
	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/confidence"
	"github.com/ternarybob/gapper/internal/eodhd"
	"github.com/ternarybob/gapper/internal/fetch"
	"github.com/ternarybob/gapper/internal/handlers"
	"github.com/ternarybob/gapper/internal/interfaces"
	"github.com/ternarybob/gapper/internal/news"
	"github.com/ternarybob/gapper/internal/scoring"
	"github.com/ternarybob/gapper/internal/scraper"
	"github.com/ternarybob/gapper/internal/services/pipeline"
	"github.com/ternarybob/gapper/internal/services/sources"
	"github.com/ternarybob/gapper/internal/storage"
	"github.com/ternarybob/gapper/internal/technicals"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	PayloadStorage interfaces.PayloadStorage
	ArchiveStorage interfaces.ArchiveStorage // nil when the archive is disabled
	Store          *cache.Store

	// Services
	Sources    *sources.Service
	Confidence interfaces.ConfidenceProvider
	Pipeline   *pipeline.Service

	// HTTP handlers
	APIHandler     *handlers.APIHandler
	PayloadHandler *handlers.PayloadHandler
	PollHandler    *handlers.PollHandler
	HistoryHandler *handlers.HistoryHandler

	browser *fetch.BrowserFetcher
}

// New initializes the application with all dependencies
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: config,
		Logger: logger,
	}

	if err := app.initStorage(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("cache", config.Cache.Backend).
		Str("bars", config.Bars.Provider).
		Str("confidence", app.Confidence.Name()).
		Bool("archive", app.ArchiveStorage != nil).
		Msg("Application initialized")

	return app, nil
}

func (a *App) initStorage(ctx context.Context) error {
	payloads, err := storage.NewPayloadStorage(ctx, a.Logger, &a.Config.Cache)
	if err != nil {
		return err
	}
	a.PayloadStorage = payloads
	a.Store = cache.NewStore(payloads, a.Config.Cache, a.Logger)

	archive, err := storage.NewArchiveStorage(a.Logger, &a.Config.Archive)
	if err != nil {
		payloads.Close()
		return err
	}
	a.ArchiveStorage = archive
	return nil
}

func (a *App) initServices(ctx context.Context) error {
	cfg := a.Config

	fetcher := fetch.NewHTTPFetcher(fetch.OptionsFromConfig(cfg.Sources), a.Logger)

	var newsScraper interfaces.NewsScraper = scraper.NewRegexScraper()
	if cfg.Sources.Scraper == "dom" {
		newsScraper = scraper.NewDOMScraper()
	}

	a.Sources = sources.NewService(cfg.Sources, fetcher, newsScraper, a.Logger)

	if cfg.Sources.UseBrowser {
		a.browser = fetch.NewBrowserFetcher(fetch.BrowserOptionsFromConfig(cfg.Sources), a.Logger)
		a.Sources.WithPageFetcher(a.browser)
	}

	barSource, eodhdClient, err := a.newBarSource()
	if err != nil {
		return err
	}
	if barSource != nil {
		enricher := technicals.NewEnricher(technicals.DefaultConfig(), technicals.NewExchangeClock("xnys"))
		a.Sources.WithBars(barSource, enricher, cfg.Bars.AvgVolumeDays)
	}

	if cfg.Bars.EODHDNews {
		if eodhdClient == nil && cfg.Bars.EODHDAPIKey != "" {
			eodhdClient = a.newEODHDClient()
		}
		if eodhdClient != nil {
			a.Sources.WithNewsProvider(sources.NewEODHDNews(eodhdClient))
		} else {
			a.Logger.Warn().Msg("EODHD news enabled without an API key, skipping")
		}
	}

	provider, err := confidence.New(ctx, cfg.Confidence, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create confidence provider: %w", err)
	}
	a.Confidence = provider

	a.Pipeline = pipeline.NewService(
		a.Sources,
		a.Confidence,
		a.Store,
		a.ArchiveStorage,
		news.NewNormalizer(cfg.News.MaxPerTicker),
		scoring.FromSettings(cfg.Scoring),
		cfg.Pipeline,
		a.Logger,
	)
	return nil
}

// newBarSource creates the configured bar provider. Both results are nil
// when enrichment is disabled.
func (a *App) newBarSource() (interfaces.BarSource, *eodhd.Client, error) {
	cfg := a.Config.Bars
	switch cfg.Provider {
	case "polygon":
		timeout := common.ParseDurationOr(a.Config.Sources.RequestTimeout, 10*time.Second)
		source, err := bars.NewPolygonSource(cfg.PolygonAPIKey, timeout, cfg.AvgVolumeDays, a.Logger)
		if err != nil {
			return nil, nil, err
		}
		return source, nil, nil
	case "eodhd":
		if cfg.EODHDAPIKey == "" {
			return nil, nil, errors.New("EODHD API key is required for the eodhd bar provider (set GAPPER_EODHD_API_KEY or bars.eodhd_api_key)")
		}
		client := a.newEODHDClient()
		return bars.NewEODHDSource(client, cfg.AvgVolumeDays, a.Logger), client, nil
	default:
		return nil, nil, nil
	}
}

func (a *App) newEODHDClient() *eodhd.Client {
	opts := []eodhd.ClientOption{
		eodhd.WithLogger(a.Logger),
		eodhd.WithRetries(a.Config.Sources.MaxRetries),
	}
	if a.Config.Bars.EODHDBaseURL != "" {
		opts = append(opts, eodhd.WithBaseURL(a.Config.Bars.EODHDBaseURL))
	}
	return eodhd.NewClient(a.Config.Bars.EODHDAPIKey, opts...)
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Store, a.Logger)
	a.PayloadHandler = handlers.NewPayloadHandler(a.Store, a.Logger)
	a.PollHandler = handlers.NewPollHandler(a.Pipeline, 0, a.Logger)
	a.HistoryHandler = handlers.NewHistoryHandler(a.ArchiveStorage, a.Logger)
}

// Close releases the browser and storage backends
func (a *App) Close() error {
	var errs []error
	if a.browser != nil {
		if err := a.browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.ArchiveStorage != nil {
		if err := a.ArchiveStorage.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.PayloadStorage != nil {
		if err := a.PayloadStorage.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.Logger.Info().Msg("Application closed")
	return errors.Join(errs...)
}
