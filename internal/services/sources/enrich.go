package sources

import (
	"context"
	"time"

	"github.com/ternarybob/gapper/internal/models"
	"github.com/ternarybob/gapper/internal/technicals"
)

// Enrich fills the technical fields snapshot is missing from the bar
// provider. Each provider call is optional; failures leave fields nil.
func (s *Service) Enrich(ctx context.Context, snapshot models.StockSnapshot, now time.Time) models.StockSnapshot {
	if !s.HasBars() {
		return snapshot
	}

	ticker := snapshot.Ticker
	in := technicals.Input{Now: now}

	prevClose, err := s.bars.PrevClose(ctx, ticker, now)
	if err != nil {
		s.warnBars(err, ticker, "prev_close")
	}
	in.PrevClose = prevClose

	avgVolume, err := s.bars.AvgDailyVolume(ctx, ticker, now, s.avgDays)
	if err != nil {
		s.warnBars(err, ticker, "avg_volume")
	}
	if avgVolume == nil {
		avgVolume = snapshot.AvgVolume
	}
	in.AvgDailyVolume = avgVolume

	bars, err := s.bars.IntradayBars(ctx, ticker, now)
	if err != nil {
		s.warnBars(err, ticker, "intraday")
	}
	in.Bars = bars

	enriched := s.enricher.Enrich(in).Apply(snapshot)
	if enriched.AvgVolume == nil {
		enriched.AvgVolume = avgVolume
	}
	return enriched
}

func (s *Service) warnBars(err error, ticker, call string) {
	s.logger.Warn().
		Err(err).
		Str("ticker", ticker).
		Str("provider", s.bars.Name()).
		Str("call", call).
		Msg("Bar data unavailable")
}
