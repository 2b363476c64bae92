package bars

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	polygonrest "github.com/polygon-io/client-go/rest"
	rmodels "github.com/polygon-io/client-go/rest/models"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/models"
)

// maxAggs is the largest page the aggregates endpoint returns
const maxAggs = 50000

// PolygonSource reads previous close, average volume and minute bars from
// the Polygon aggregates API
type PolygonSource struct {
	client  *polygonrest.Client
	logger  arbor.ILogger
	avgDays int
	daily   *dailyHistory
}

// NewPolygonSource creates a source. avgDays is the trailing window used
// for the average daily volume.
func NewPolygonSource(apiKey string, timeout time.Duration, avgDays int, logger arbor.ILogger) (*PolygonSource, error) {
	if apiKey == "" {
		return nil, errors.New("Polygon API key is required for the polygon bar provider (set POLYGON_API_KEY or bars.polygon_api_key)")
	}
	if avgDays <= 0 {
		avgDays = 30
	}

	s := &PolygonSource{
		client:  polygonrest.NewWithClient(apiKey, &http.Client{Timeout: timeout}),
		logger:  logger,
		avgDays: avgDays,
	}
	s.daily = newDailyHistory(s.dailyBars)
	return s, nil
}

// Name implements BarSource
func (s *PolygonSource) Name() string {
	return "polygon"
}

// PrevClose implements BarSource
func (s *PolygonSource) PrevClose(ctx context.Context, ticker string, day time.Time) (*float64, error) {
	daily, err := s.daily.before(ctx, ticker, day, s.avgDays)
	if err != nil {
		return nil, err
	}
	return PrevClose(daily), nil
}

// AvgDailyVolume implements BarSource
func (s *PolygonSource) AvgDailyVolume(ctx context.Context, ticker string, day time.Time, days int) (*float64, error) {
	if days > s.avgDays {
		days = s.avgDays
	}
	daily, err := s.daily.before(ctx, ticker, day, s.avgDays)
	if err != nil {
		return nil, err
	}
	return AvgVolume(daily, days), nil
}

// IntradayBars implements BarSource. Pre-market bars are included; the
// enricher filters by session.
func (s *PolygonSource) IntradayBars(ctx context.Context, ticker string, day time.Time) ([]models.Bar, error) {
	start := dayStart(day)
	return s.aggs(ctx, ticker, rmodels.Minute, start, start.AddDate(0, 0, 1))
}

func (s *PolygonSource) dailyBars(ctx context.Context, ticker string, from, to time.Time) ([]models.Bar, error) {
	return s.aggs(ctx, ticker, rmodels.Day, from, to)
}

func (s *PolygonSource) aggs(ctx context.Context, ticker string, span rmodels.Timespan, from, to time.Time) ([]models.Bar, error) {
	params := &rmodels.ListAggsParams{
		Ticker:     ticker,
		Timespan:   span,
		Multiplier: 1,
		From:       rmodels.Millis(from),
		To:         rmodels.Millis(to),
	}
	limit := maxAggs
	asc := rmodels.Asc
	adjusted := true
	params.Limit = &limit
	params.Order = &asc
	params.Adjusted = &adjusted

	iter := s.client.ListAggs(ctx, params)
	var out []models.Bar
	for iter.Next() {
		a := iter.Item()
		out = append(out, models.Bar{
			Time:   time.Time(a.Timestamp).UTC(),
			Open:   a.Open,
			High:   a.High,
			Low:    a.Low,
			Close:  a.Close,
			Volume: a.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("polygon %s aggregates for %s: %w", span, ticker, err)
	}
	return out, nil
}
