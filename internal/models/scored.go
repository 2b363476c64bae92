package models

// Decision is the bucket assigned from the action score
type Decision string

const (
	DecisionTrade Decision = "TRADE"
	DecisionWatch Decision = "WATCH"
	DecisionSkip  Decision = "SKIP"
)

// ScoredCandidate is a snapshot with its derived score. It is recomputed
// every poll and never patched in place.
type ScoredCandidate struct {
	StockSnapshot
	AIConfidence *float64    `json:"aiConfidence,omitempty"`
	ActionScore  float64     `json:"actionScore"`
	Decision     Decision    `json:"decision"`
	TopCatalyst  CatalystTag `json:"topCatalyst,omitempty"` // Tag of the newest tagged headline
}
