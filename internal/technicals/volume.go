package technicals

import (
	"time"

	"github.com/ternarybob/gapper/internal/models"
)

// RelativeVolume is time-normalized: cumulative session volume divided by
// the share of the trailing average daily volume expected by now,
//
//	rvol = cumVolume / (avgDailyVolume * elapsed / sessionMinutes)
//
// with elapsed clamped to [1, sessionMinutes]. After the close this is the
// plain cumulative/average ratio. Returns nil without session bars or a
// positive average.
func RelativeVolume(sessionBars []models.Bar, avgDailyVolume *float64, session Session, now time.Time) *float64 {
	if len(sessionBars) == 0 || avgDailyVolume == nil || *avgDailyVolume <= 0 {
		return nil
	}
	if session.Minutes() <= 0 {
		return nil
	}

	expected := *avgDailyVolume * session.ElapsedMinutes(now) / session.Minutes()
	if expected <= 0 {
		return nil
	}
	return ptr(CumulativeVolume(sessionBars) / expected)
}

// CumulativeVolume sums bar volume
func CumulativeVolume(bars []models.Bar) float64 {
	total := 0.0
	for _, b := range bars {
		if b.Volume > 0 {
			total += b.Volume
		}
	}
	return total
}
