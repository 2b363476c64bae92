package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

func TestParseSnapshots_BasicScenario(t *testing.T) {
	csv := "Ticker,Price,Change,RelativeVolume,Float\nAAPL,2.53,9.1,1.8,15300000000\n"

	got := ParseSnapshots(csv, asOf)
	require.Len(t, got, 1)

	s := got[0]
	assert.Equal(t, "AAPL", s.Ticker)
	require.NotNil(t, s.Price)
	assert.InDelta(t, 2.53, *s.Price, 1e-9)
	require.NotNil(t, s.ChangePct)
	assert.InDelta(t, 9.1, *s.ChangePct, 1e-9)
	require.NotNil(t, s.RelativeVolume)
	assert.InDelta(t, 1.8, *s.RelativeVolume, 1e-9)
	require.NotNil(t, s.FloatShares)
	assert.InDelta(t, 15300000000, *s.FloatShares, 1e-3)
	assert.Equal(t, asOf, s.AsOf)

	// Columns missing from the header are absent, not zero
	assert.Nil(t, s.GapPct)
	assert.Nil(t, s.RSI)
	assert.Nil(t, s.Volume)
}

func TestParseSnapshots_SynonymsAndFormatting(t *testing.T) {
	csv := `No.,Symbol,Company,Sector,Last,Change %,Gap %,Rel Volume,Shs Float,RSI (14),Volume
1,gme,"GameStop Corp.",Consumer Cyclical,$24.10,+12.50%,8.2%,3.4,"305.5M",71.2,"12,345,678"
`

	got := ParseSnapshots(csv, asOf)
	require.Len(t, got, 1)

	s := got[0]
	assert.Equal(t, "GME", s.Ticker)
	assert.Equal(t, "GameStop Corp.", s.Company)
	assert.Equal(t, "Consumer Cyclical", s.Sector)
	assert.InDelta(t, 24.10, *s.Price, 1e-9)
	assert.InDelta(t, 12.5, *s.ChangePct, 1e-9)
	assert.InDelta(t, 8.2, *s.GapPct, 1e-9)
	assert.InDelta(t, 3.4, *s.RelativeVolume, 1e-9)
	assert.InDelta(t, 305_500_000, *s.FloatShares, 1e-3)
	assert.InDelta(t, 71.2, *s.RSI, 1e-9)
	require.NotNil(t, s.Volume)
	assert.Equal(t, int64(12_345_678), *s.Volume)
}

func TestParseSnapshots_SemicolonDelimiter(t *testing.T) {
	csv := "Ticker;Price;Change\nABCD;1,25;-3,5\n\"EFG\";2;\"4\"\n"

	got := ParseSnapshots(csv, asOf)
	require.Len(t, got, 2)

	assert.Equal(t, "ABCD", got[0].Ticker)
	assert.InDelta(t, 1.25, *got[0].Price, 1e-9)
	assert.InDelta(t, -3.5, *got[0].ChangePct, 1e-9)
	assert.Equal(t, "EFG", got[1].Ticker)
	assert.InDelta(t, 4, *got[1].ChangePct, 1e-9)
}

func TestParseSnapshots_QuotedDelimiterDoesNotSplit(t *testing.T) {
	csv := "Ticker,Company,Price\nXYZ,\"Acme, Inc.\",3.10\n"

	got := ParseSnapshots(csv, asOf)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme, Inc.", got[0].Company)
	assert.InDelta(t, 3.10, *got[0].Price, 1e-9)
}

func TestParseSnapshots_MultiTickerCellFansOut(t *testing.T) {
	csv := "Tickers,Price\n\"AAA/BBB, CCC\",5\nDDD EEE,6\n"

	got := ParseSnapshots(csv, asOf)
	require.Len(t, got, 5)

	tickers := make([]string, 0, len(got))
	for _, s := range got {
		tickers = append(tickers, s.Ticker)
	}
	assert.Equal(t, []string{"AAA", "BBB", "CCC", "DDD", "EEE"}, tickers)
	assert.InDelta(t, 5, *got[2].Price, 1e-9)
	assert.InDelta(t, 6, *got[4].Price, 1e-9)
}

func TestParseSnapshots_SkipsBadRows(t *testing.T) {
	csv := "Ticker,Price\n,1.00\n123,2.00\nGOOD,abc\n\nOK,4\n"

	got := ParseSnapshots(csv, asOf)
	require.Len(t, got, 2)

	assert.Equal(t, "GOOD", got[0].Ticker)
	assert.Nil(t, got[0].Price)
	assert.Equal(t, "OK", got[1].Ticker)
}

func TestParseSnapshots_ShortRowsKeepResolvedFields(t *testing.T) {
	csv := "Ticker,Price,Change\nAAA\nBBB,1\n"

	got := ParseSnapshots(csv, asOf)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].Price)
	assert.InDelta(t, 1, *got[1].Price, 1e-9)
	assert.Nil(t, got[1].ChangePct)
}

func TestParseSnapshots_OutOfRangeValuesAreAbsent(t *testing.T) {
	csv := "Ticker,Price,RSI,Float\nAAA,-1,120,-5\n"

	got := ParseSnapshots(csv, asOf)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Price)
	assert.Nil(t, got[0].RSI)
	assert.Nil(t, got[0].FloatShares)
}

func TestParseSnapshots_EmptyResults(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty", ""},
		{"header only", "Ticker,Price\n"},
		{"blank lines", "\n\n  \n"},
		{"no ticker column", "Company,Price\nApple,2.53\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSnapshots(tt.csv, asOf)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestParseSnapshots_ByteOrderMarkAndCRLF(t *testing.T) {
	csv := "\ufeffTicker,Price\r\nAAA,1.5\r\n"

	got := ParseSnapshots(csv, asOf)
	require.Len(t, got, 1)
	assert.Equal(t, "AAA", got[0].Ticker)
	assert.InDelta(t, 1.5, *got[0].Price, 1e-9)
}

func TestParseSnapshots_TickerAndPriceAlwaysResolved(t *testing.T) {
	tickerHeaders := []string{"Ticker", "tickers", "SYMBOL", "Symbols"}
	priceHeaders := []string{"Price", "Last", "Last Price", "close"}

	for _, th := range tickerHeaders {
		for _, ph := range priceHeaders {
			csv := th + "," + ph + "\nAAA,1.5\nBBB,2.5\n"
			got := ParseSnapshots(csv, asOf)
			require.Len(t, got, 2, "%s/%s", th, ph)
			assert.InDelta(t, 1.5, *got[0].Price, 1e-9)
			assert.InDelta(t, 2.5, *got[1].Price, 1e-9)
		}
	}
}

func TestParseSnapshots_DerivesRelativeVolume(t *testing.T) {
	csv := "Ticker,Volume,Avg Volume\nXYZ,3.2M,800K\nABC,100,0\n"

	got := ParseSnapshots(csv, asOf)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].RelativeVolume)
	assert.InDelta(t, 4.0, *got[0].RelativeVolume, 1e-9)
	assert.Nil(t, got[1].RelativeVolume)
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"Rel Volume":  "relvolume",
		"rel_volume":  "relvolume",
		"Change %":    "change",
		"RSI (14)":    "rsi14",
		" Shs Float":  "shsfloat",
		"Gap% (poly)": "gappoly",
	}
	for input, want := range tests {
		assert.Equal(t, want, normalizeKey(input), input)
	}
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', detectDelimiter("a;b;c"))
	assert.Equal(t, ',', detectDelimiter("a,b,c"))
	assert.Equal(t, ',', detectDelimiter("a;b,c"))
	assert.Equal(t, ';', detectDelimiter(`"a,b";c;d`))
}
