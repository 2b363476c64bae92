// Package bars adapts bar-aggregation providers to the BarSource interface.
package bars

import (
	"context"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/ternarybob/gapper/internal/models"
)

// dailyFetch returns daily bars in [from, to], ascending
type dailyFetch func(ctx context.Context, ticker string, from, to time.Time) ([]models.Bar, error)

// dailyHistory memoizes the daily bars behind PrevClose and AvgDailyVolume
// so one poll asks the provider once per ticker. Entries from earlier days
// are dropped when the day changes.
type dailyHistory struct {
	fetch dailyFetch

	mu      sync.Mutex
	day     string
	entries map[string][]models.Bar
}

func newDailyHistory(fetch dailyFetch) *dailyHistory {
	return &dailyHistory{fetch: fetch, entries: make(map[string][]models.Bar)}
}

// before returns up to days daily bars from sessions before day
func (h *dailyHistory) before(ctx context.Context, ticker string, day time.Time, days int) ([]models.Bar, error) {
	start := dayStart(day)
	key := ticker

	h.mu.Lock()
	if stamp := start.Format("2006-01-02"); stamp != h.day {
		h.day = stamp
		h.entries = make(map[string][]models.Bar)
	}
	cached, ok := h.entries[key]
	h.mu.Unlock()

	if !ok || len(cached) < days {
		// Calendar days needed to cover the sessions, with room for holidays
		from := start.AddDate(0, 0, -(days*7/5 + 10))
		fetched, err := h.fetch(ctx, ticker, from, start.Add(-time.Minute))
		if err != nil {
			return nil, err
		}

		cached = make([]models.Bar, 0, len(fetched))
		for _, b := range fetched {
			if b.Time.Before(start) {
				cached = append(cached, b)
			}
		}

		h.mu.Lock()
		h.entries[key] = cached
		h.mu.Unlock()
	}

	if len(cached) > days {
		return cached[len(cached)-days:], nil
	}
	return cached, nil
}

// PrevClose returns the close of the last bar
func PrevClose(daily []models.Bar) *float64 {
	for i := len(daily) - 1; i >= 0; i-- {
		if daily[i].Close > 0 {
			return models.Float(daily[i].Close)
		}
	}
	return nil
}

// AvgVolume returns the mean volume of the last days bars
func AvgVolume(daily []models.Bar, days int) *float64 {
	if days > 0 && len(daily) > days {
		daily = daily[len(daily)-days:]
	}
	if len(daily) == 0 {
		return nil
	}
	total := 0.0
	for _, b := range daily {
		total += b.Volume
	}
	if total <= 0 {
		return nil
	}
	return models.Float(total / float64(len(daily)))
}

// dayStart is midnight in New York on the exchange-local date of t
func dayStart(t time.Time) time.Time {
	local := t.In(newYork)
	year, month, day := local.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, newYork)
}

var newYork = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}()
