package technicals

import (
	"github.com/ternarybob/gapper/internal/models"
)

// OpeningPrice is the open of the first bar at or after the session open,
// falling back to the first bar of the day. Returns nil without bars.
func OpeningPrice(bars []models.Bar, session *Session) *float64 {
	if len(bars) == 0 {
		return nil
	}
	if session != nil {
		for _, b := range bars {
			if !b.Time.Before(session.Open) && b.Open > 0 {
				return ptr(b.Open)
			}
		}
	}
	if bars[0].Open > 0 {
		return ptr(bars[0].Open)
	}
	return nil
}

// GapPercent is (open - priorClose) / priorClose * 100. Returns nil when
// either input is missing or priorClose is not positive.
func GapPercent(open, priorClose *float64) *float64 {
	if open == nil || priorClose == nil || *priorClose <= 0 {
		return nil
	}
	return ptr((*open - *priorClose) / *priorClose * 100)
}

// ChangePercent is (last - priorClose) / priorClose * 100
func ChangePercent(last, priorClose *float64) *float64 {
	return GapPercent(last, priorClose)
}
