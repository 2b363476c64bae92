package models

import (
	"time"
)

// ScoreRun is one archived poll cycle
type ScoreRun struct {
	ID          string            `json:"id"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Duration    time.Duration     `json:"duration"`
	Sources     []string          `json:"sources,omitempty"` // Sources that returned data
	Candidates  []ScoredCandidate `json:"candidates"`
}

// ArchivedCandidate is one ticker's score from a past run
type ArchivedCandidate struct {
	RunID       string    `json:"runId"`
	GeneratedAt time.Time `json:"generatedAt"`
	ScoredCandidate
}
