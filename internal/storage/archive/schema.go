package archive

import (
	"time"
)

// runRow is one archived poll cycle. Sources is comma separated.
type runRow struct {
	ID          string         `gorm:"primaryKey;size:36"`
	GeneratedAt time.Time      `gorm:"index"`
	DurationMs  int64          `gorm:"not null;default:0"`
	Sources     string         `gorm:"size:255"`
	Candidates  []candidateRow `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

func (runRow) TableName() string {
	return "score_runs"
}

// candidateRow is one scored ticker of a run. Optional inputs stay NULL
// when absent so training queries can tell missing from zero.
type candidateRow struct {
	ID             uint      `gorm:"primaryKey"`
	RunID          string    `gorm:"index;size:36"`
	Ticker         string    `gorm:"index;size:16"`
	GeneratedAt    time.Time `gorm:"index"`
	Price          *float64
	ChangePct      *float64
	GapPct         *float64
	RelativeVolume *float64
	FloatShares    *float64
	RSI            *float64
	Volume         *int64
	AvgVolume      *float64
	Sector         string
	Company        string
	AsOf           time.Time
	AIConfidence   *float64
	ActionScore    float64
	Decision       string `gorm:"size:8"`
	TopCatalyst    string `gorm:"size:16"`
}

func (candidateRow) TableName() string {
	return "score_candidates"
}
