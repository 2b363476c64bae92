package models

import (
	"time"
)

// StockSnapshot is one row per ticker per poll cycle.
// Optional numeric fields are nil when the source did not provide them;
// nil is never conflated with zero.
type StockSnapshot struct {
	Ticker         string    `json:"ticker"`
	Price          *float64  `json:"price,omitempty"`
	ChangePct      *float64  `json:"changePct,omitempty"`      // Signed intraday change percent
	GapPct         *float64  `json:"gapPct,omitempty"`         // Open vs prior close, percent
	RelativeVolume *float64  `json:"relativeVolume,omitempty"` // Ratio to trailing average volume
	FloatShares    *float64  `json:"floatShares,omitempty"`    // Absolute share count
	RSI            *float64  `json:"rsi,omitempty"`            // RSI(14), [0,100]
	Volume         *int64    `json:"volume,omitempty"`
	AvgVolume      *float64  `json:"avgVolume,omitempty"` // Trailing average daily volume
	Sector         string    `json:"sector,omitempty"`
	Company        string    `json:"company,omitempty"`
	AsOf           time.Time `json:"asOf"`
}

// FloatMillions returns the float in millions of shares, or nil.
func (s StockSnapshot) FloatMillions() *float64 {
	if s.FloatShares == nil {
		return nil
	}
	return Float(*s.FloatShares / 1e6)
}

// Float returns a pointer to v, for optional fields.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v, for optional fields.
func Int(v int64) *int64 {
	return &v
}
