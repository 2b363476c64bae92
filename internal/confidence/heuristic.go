package confidence

import (
	"context"
	"math"

	"github.com/ternarybob/gapper/internal/models"
)

// Heuristic is the transparent fallback used when no model is trained:
//
//	0.5*gap + 0.3*rvol + 0.2*rsi
//
// where gap = (clip(gapPct,-40,40)+40)/80, rvol = clip(rvol,0,10)/10 and
// rsi = 1 - |rsi-50|/50 peaks at 50. All three inputs are required.
type Heuristic struct{}

// NewHeuristic creates the heuristic provider
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Name implements ConfidenceProvider
func (h *Heuristic) Name() string {
	return ProviderHeuristic
}

// Confidence implements ConfidenceProvider
func (h *Heuristic) Confidence(_ context.Context, snap models.StockSnapshot, _ []models.NewsItem) (*float64, error) {
	if snap.GapPct == nil || snap.RelativeVolume == nil || snap.RSI == nil {
		return nil, nil
	}

	gap := (clip(*snap.GapPct, -40, 40) + 40) / 80
	rvol := clip(*snap.RelativeVolume, 0, 10) / 10
	rsi := 1 - math.Abs(clip(*snap.RSI, 0, 100)-50)/50

	score := clip(0.5*gap+0.3*rvol+0.2*rsi, 0, 1)
	return &score, nil
}
