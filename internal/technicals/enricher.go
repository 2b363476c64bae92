// Package technicals derives RSI, relative volume and gap percent from
// intraday bars. Each figure degrades to nil on its own when its inputs are
// missing.
package technicals

import (
	"sort"
	"time"

	"github.com/ternarybob/gapper/internal/models"
)

// Config holds enrichment settings
type Config struct {
	RSIPeriod int
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		RSIPeriod: DefaultRSIPeriod,
	}
}

// Input is everything known about one ticker for the current session
type Input struct {
	Bars           []models.Bar // Intraday bars, any order
	PrevClose      *float64     // Prior session close
	AvgDailyVolume *float64     // Trailing N-day average daily volume
	Now            time.Time
}

// Result holds derived figures; nil means unavailable
type Result struct {
	GapPct         *float64
	RelativeVolume *float64
	RSI            *float64
	LastPrice      *float64
	ChangePct      *float64
	Volume         *int64
}

// Enricher computes technical figures for one ticker
type Enricher struct {
	config Config
	clock  SessionClock
}

// NewEnricher creates an enricher. A nil clock uses the weekday clock.
func NewEnricher(config Config, clock SessionClock) *Enricher {
	if config.RSIPeriod <= 0 {
		config.RSIPeriod = DefaultRSIPeriod
	}
	if clock == nil {
		clock = NewWeekdayClock()
	}
	return &Enricher{config: config, clock: clock}
}

// Enrich derives every figure it can from in
func (e *Enricher) Enrich(in Input) Result {
	bars := sortedBars(in.Bars)

	var result Result
	if len(bars) == 0 {
		return result
	}

	// The session is the one the latest bar belongs to
	var session *Session
	if s, ok := e.clock.Session(bars[len(bars)-1].Time); ok {
		session = &s
	}

	sessionBars := bars
	if session != nil {
		if inSession := filterSession(bars, *session); len(inSession) > 0 {
			sessionBars = inSession
		}
	}

	result.GapPct = GapPercent(OpeningPrice(bars, session), in.PrevClose)

	closes := make([]float64, 0, len(sessionBars))
	for _, b := range sessionBars {
		closes = append(closes, b.Close)
	}
	result.RSI = RSI(closes, e.config.RSIPeriod)

	if session != nil {
		if inSession := filterSession(bars, *session); len(inSession) > 0 {
			result.RelativeVolume = RelativeVolume(inSession, in.AvgDailyVolume, *session, in.Now)
			volume := int64(CumulativeVolume(inSession))
			result.Volume = &volume
		}
	}

	if last := bars[len(bars)-1].Close; last > 0 {
		result.LastPrice = ptr(last)
		result.ChangePct = ChangePercent(result.LastPrice, in.PrevClose)
	}

	return result
}

// Apply fills fields missing from snapshot with derived figures. Values the
// export already provided are kept.
func (r Result) Apply(snapshot models.StockSnapshot) models.StockSnapshot {
	if snapshot.GapPct == nil {
		snapshot.GapPct = r.GapPct
	}
	if snapshot.RelativeVolume == nil {
		snapshot.RelativeVolume = r.RelativeVolume
	}
	if snapshot.RSI == nil {
		snapshot.RSI = r.RSI
	}
	if snapshot.Price == nil {
		snapshot.Price = r.LastPrice
	}
	if snapshot.ChangePct == nil {
		snapshot.ChangePct = r.ChangePct
	}
	if snapshot.Volume == nil {
		snapshot.Volume = r.Volume
	}
	return snapshot
}

func sortedBars(bars []models.Bar) []models.Bar {
	sorted := make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		if !b.Time.IsZero() {
			sorted = append(sorted, b)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	return sorted
}

func filterSession(bars []models.Bar, session Session) []models.Bar {
	var inSession []models.Bar
	for _, b := range bars {
		if session.Contains(b.Time) {
			inSession = append(inSession, b)
		}
	}
	return inSession
}
