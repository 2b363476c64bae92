// Package scoring ranks snapshots by trading relevance. Score is a pure
// function of one snapshot, an optional aiConfidence and a Config.
package scoring

import (
	"math"

	"github.com/ternarybob/gapper/internal/models"
)

// Terms are the normalized inputs, each in [0,1]
type Terms struct {
	AI     float64
	RVOL   float64
	Gap    float64
	Change float64
}

// Result is the outcome of scoring one snapshot
type Result struct {
	Terms       Terms
	Base        float64 // Weighted sum x 100, before adjustments
	FloatAdjust float64 // Bonus (positive) or penalty (negative)
	Penalties   float64 // Red day and stretched RSI, as a positive amount
	ActionScore float64
	Decision    models.Decision
}

// Score computes the action score and decision. A nil aiConfidence scores
// as 0.
func Score(snap models.StockSnapshot, aiConfidence *float64, cfg Config) Result {
	terms := NormalizeTerms(snap, aiConfidence)

	w := cfg.Weights
	base := 100 * (w.AI*terms.AI + w.RVOL*terms.RVOL + w.Gap*terms.Gap + w.Change*terms.Change)
	floatAdjust := FloatAdjustment(snap.FloatMillions(), cfg)

	penalties := 0.0
	if snap.ChangePct != nil && *snap.ChangePct < 0 {
		penalties += cfg.RedDayPenalty
	}
	if snap.RSI != nil && (*snap.RSI >= cfg.RSIHigh || *snap.RSI <= cfg.RSILow) {
		penalties += cfg.StretchedPenalty
	}

	score := clamp(base+floatAdjust-penalties, 0, 100)
	return Result{
		Terms:       terms,
		Base:        base,
		FloatAdjust: floatAdjust,
		Penalties:   penalties,
		ActionScore: score,
		Decision:    Classify(score, cfg),
	}
}

// NormalizeTerms maps the raw inputs into [0,1]. Absent inputs are 0.
func NormalizeTerms(snap models.StockSnapshot, aiConfidence *float64) Terms {
	var terms Terms
	if aiConfidence != nil {
		terms.AI = clamp(*aiConfidence, 0, 1)
	}
	if snap.RelativeVolume != nil {
		// 1x baseline is 0, 3x is 1
		terms.RVOL = clamp((*snap.RelativeVolume-1)/2, 0, 1)
	}
	if snap.GapPct != nil {
		terms.Gap = clamp(math.Abs(*snap.GapPct)/20, 0, 1)
	}
	if snap.ChangePct != nil {
		terms.Change = clamp(math.Max(0, *snap.ChangePct)/10, 0, 1)
	}
	return terms
}

// FloatAdjustment returns the float bonus or penalty. At or below the
// target the bonus applies; above it the penalty grows linearly to the max
// at the cap and stays there. An absent float adjusts nothing.
func FloatAdjustment(floatM *float64, cfg Config) float64 {
	if floatM == nil || *floatM < 0 {
		return 0
	}
	if *floatM <= cfg.FloatTargetM {
		return cfg.FloatBonus
	}
	span := cfg.FloatCapM - cfg.FloatTargetM
	if span <= 0 {
		return -cfg.FloatMaxPenalty
	}
	fraction := clamp((*floatM-cfg.FloatTargetM)/span, 0, 1)
	return -cfg.FloatMaxPenalty * fraction
}

// Classify buckets a score: >= trade threshold is TRADE, >= watch threshold
// is WATCH, anything else SKIP
func Classify(score float64, cfg Config) models.Decision {
	switch {
	case score >= cfg.TradeThreshold:
		return models.DecisionTrade
	case score >= cfg.WatchThreshold:
		return models.DecisionWatch
	default:
		return models.DecisionSkip
	}
}

// Candidate builds the scored record for a snapshot
func Candidate(snap models.StockSnapshot, aiConfidence *float64, topCatalyst models.CatalystTag, cfg Config) models.ScoredCandidate {
	result := Score(snap, aiConfidence, cfg)
	return models.ScoredCandidate{
		StockSnapshot: snap,
		AIConfidence:  aiConfidence,
		ActionScore:   result.ActionScore,
		Decision:      result.Decision,
		TopCatalyst:   topCatalyst,
	}
}

func clamp(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
