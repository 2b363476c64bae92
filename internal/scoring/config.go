package scoring

import (
	"github.com/ternarybob/gapper/internal/common"
)

// Weights blend the four normalized terms. They sum to 1.
type Weights struct {
	AI     float64
	RVOL   float64
	Gap    float64
	Change float64
}

// Config holds every tunable of the action score
type Config struct {
	Weights          Weights
	FloatTargetM     float64 // Float (millions) at or below which the bonus applies
	FloatCapM        float64 // Float (millions) at which the penalty stops growing
	FloatBonus       float64
	FloatMaxPenalty  float64
	RedDayPenalty    float64
	StretchedPenalty float64
	RSIHigh          float64
	RSILow           float64
	TradeThreshold   float64
	WatchThreshold   float64
}

// DefaultConfig returns the default scoring configuration
func DefaultConfig() Config {
	return FromSettings(common.NewDefaultConfig().Scoring)
}

// FromSettings maps the [scoring] config section
func FromSettings(s common.ScoringConfig) Config {
	return Config{
		Weights: Weights{
			AI:     s.Weights.AI,
			RVOL:   s.Weights.RVOL,
			Gap:    s.Weights.Gap,
			Change: s.Weights.Change,
		},
		FloatTargetM:     s.FloatTargetM,
		FloatCapM:        s.FloatCapM,
		FloatBonus:       s.FloatBonus,
		FloatMaxPenalty:  s.FloatMaxPenalty,
		RedDayPenalty:    s.RedDayPenalty,
		StretchedPenalty: s.StretchedPenalty,
		RSIHigh:          s.RSIHigh,
		RSILow:           s.RSILow,
		TradeThreshold:   s.TradeThreshold,
		WatchThreshold:   s.WatchThreshold,
	}
}
