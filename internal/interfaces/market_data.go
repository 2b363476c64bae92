package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/gapper/internal/models"
)

// BarSource reads aggregates from a bar provider. Each call is independent;
// a nil value with a nil error means the provider had no data.
type BarSource interface {
	Name() string

	// PrevClose returns the close of the session before day
	PrevClose(ctx context.Context, ticker string, day time.Time) (*float64, error)

	// AvgDailyVolume returns the mean daily volume over the trailing days
	// sessions before day
	AvgDailyVolume(ctx context.Context, ticker string, day time.Time, days int) (*float64, error)

	// IntradayBars returns minute bars for day, ascending
	IntradayBars(ctx context.Context, ticker string, day time.Time) ([]models.Bar, error)
}

// NewsProvider returns headlines from an API news source
type NewsProvider interface {
	Name() string
	News(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error)
}
