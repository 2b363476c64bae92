package bars

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/eodhd"
	"github.com/ternarybob/gapper/internal/models"
)

// EODHDSource reads daily and intraday bars from EODHD
type EODHDSource struct {
	client  *eodhd.Client
	logger  arbor.ILogger
	avgDays int
	daily   *dailyHistory
}

// NewEODHDSource creates a source over an EODHD client
func NewEODHDSource(client *eodhd.Client, avgDays int, logger arbor.ILogger) *EODHDSource {
	if avgDays <= 0 {
		avgDays = 30
	}
	s := &EODHDSource{client: client, logger: logger, avgDays: avgDays}
	s.daily = newDailyHistory(s.dailyBars)
	return s
}

// Name implements BarSource
func (s *EODHDSource) Name() string {
	return "eodhd"
}

// PrevClose implements BarSource
func (s *EODHDSource) PrevClose(ctx context.Context, ticker string, day time.Time) (*float64, error) {
	daily, err := s.daily.before(ctx, ticker, day, s.avgDays)
	if err != nil {
		return nil, err
	}
	return PrevClose(daily), nil
}

// AvgDailyVolume implements BarSource
func (s *EODHDSource) AvgDailyVolume(ctx context.Context, ticker string, day time.Time, days int) (*float64, error) {
	if days > s.avgDays {
		days = s.avgDays
	}
	daily, err := s.daily.before(ctx, ticker, day, s.avgDays)
	if err != nil {
		return nil, err
	}
	return AvgVolume(daily, days), nil
}

// IntradayBars implements BarSource
func (s *EODHDSource) IntradayBars(ctx context.Context, ticker string, day time.Time) ([]models.Bar, error) {
	start := dayStart(day)
	resp, err := s.client.GetIntraday(ctx, common.EODHDSymbol(ticker),
		eodhd.WithInterval("1m"),
		eodhd.WithDateRange(start, start.AddDate(0, 0, 1)),
	)
	if err != nil {
		return nil, fmt.Errorf("eodhd intraday bars for %s: %w", ticker, err)
	}

	out := make([]models.Bar, 0, len(resp))
	for _, d := range resp {
		out = append(out, models.Bar{
			Time:   d.Time(),
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: d.Volume,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (s *EODHDSource) dailyBars(ctx context.Context, ticker string, from, to time.Time) ([]models.Bar, error) {
	resp, err := s.client.GetEOD(ctx, common.EODHDSymbol(ticker),
		eodhd.WithDateRange(from, to),
		eodhd.WithOrder("a"),
	)
	if err != nil {
		return nil, fmt.Errorf("eodhd daily bars for %s: %w", ticker, err)
	}

	out := make([]models.Bar, 0, len(resp))
	for _, d := range resp {
		if d.Date.IsZero() {
			continue
		}
		// Daily bars are keyed by exchange-local date
		date := time.Date(d.Date.Year(), d.Date.Month(), d.Date.Day(), 0, 0, 0, 0, newYork)
		out = append(out, models.Bar{
			Time:   date,
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: float64(d.Volume),
		})
	}
	return out, nil
}
