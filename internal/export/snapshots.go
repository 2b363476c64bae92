package export

import (
	"time"

	"github.com/ternarybob/gapper/internal/coerce"
	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/models"
)

// ParseSnapshots parses a screener export into one snapshot per ticker.
// A cell holding several tickers fans out into one snapshot each. The result
// is empty when the text has no data rows or no ticker-like column.
func ParseSnapshots(text string, asOf time.Time) []models.StockSnapshot {
	t := readTable(text)
	if t == nil {
		return []models.StockSnapshot{}
	}

	cols := resolveColumns(t.header,
		colTicker, colPrice, colChange, colGap, colRVOL, colFloat,
		colRSI, colVolume, colAvgVolume, colSector, colCompany,
	)
	tickerIdx := index(cols, colTicker)
	if tickerIdx < 0 {
		return []models.StockSnapshot{}
	}

	number := func(row []string, col column) *float64 {
		return coerce.Number(cell(row, index(cols, col)))
	}

	snapshots := make([]models.StockSnapshot, 0, len(t.rows))
	for _, row := range t.rows {
		tickers := common.SplitSymbols(cell(row, tickerIdx))
		if len(tickers) == 0 {
			continue
		}

		base := models.StockSnapshot{
			Price:          nonNegative(number(row, colPrice)),
			ChangePct:      number(row, colChange),
			GapPct:         number(row, colGap),
			RelativeVolume: nonNegative(number(row, colRVOL)),
			FloatShares:    nonNegative(number(row, colFloat)),
			RSI:            bounded(number(row, colRSI), 0, 100),
			Volume:         volume(cell(row, index(cols, colVolume))),
			AvgVolume:      nonNegative(number(row, colAvgVolume)),
			Sector:         cell(row, index(cols, colSector)),
			Company:        cell(row, index(cols, colCompany)),
			AsOf:           asOf,
		}
		if base.RelativeVolume == nil {
			base.RelativeVolume = derivedRVOL(base.Volume, base.AvgVolume)
		}

		for _, ticker := range tickers {
			snapshot := base
			snapshot.Ticker = ticker
			snapshots = append(snapshots, snapshot)
		}
	}
	return snapshots
}

func nonNegative(v *float64) *float64 {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}

func bounded(v *float64, lo, hi float64) *float64 {
	if v == nil || *v < lo || *v > hi {
		return nil
	}
	return v
}

// derivedRVOL is volume over average volume, for exports that carry both
// but no relative volume column
func derivedRVOL(volume *int64, avgVolume *float64) *float64 {
	if volume == nil || avgVolume == nil || *avgVolume <= 0 {
		return nil
	}
	return models.Float(float64(*volume) / *avgVolume)
}

func volume(raw string) *int64 {
	v := coerce.Int(raw)
	if v == nil || *v < 0 {
		return nil
	}
	return v
}
