package export

import (
	"strings"
	"unicode"
)

// column is a logical field resolved from whatever the provider named it
type column string

const (
	colTicker    column = "ticker"
	colPrice     column = "price"
	colChange    column = "changePct"
	colGap       column = "gapPct"
	colRVOL      column = "relativeVolume"
	colFloat     column = "floatShares"
	colRSI       column = "rsi"
	colVolume    column = "volume"
	colAvgVolume column = "avgVolume"
	colSector    column = "sector"
	colCompany   column = "company"

	colDate     column = "date"
	colTime     column = "time"
	colHeadline column = "headline"
	colSource   column = "source"
	colLink     column = "link"
	colForm     column = "form"
)

// synonyms lists accepted normalized header keys per logical column, in
// preference order. The first synonym present in the header wins.
var synonyms = map[column][]string{
	colTicker:    {"ticker", "tickers", "symbol", "symbols"},
	colPrice:     {"price", "last", "lastprice", "close"},
	colChange:    {"change", "changepct", "changepercent", "pctchange", "percentchange", "chg"},
	colGap:       {"gap", "gappct", "gappercent", "gappctpoly"},
	colRVOL:      {"relativevolume", "rvol", "relvolume", "relvol", "relvolpoly", "volumeratio"},
	colFloat:     {"float", "shsfloat", "sharesfloat", "floatshares"},
	colRSI:       {"rsi", "rsi14", "rsi14m", "relativestrengthindex14"},
	colVolume:    {"volume", "vol"},
	colAvgVolume: {"avgvolume", "averagevolume", "avgvol"},
	colSector:    {"sector"},
	colCompany:   {"company", "companyname", "name"},

	colDate:     {"date", "newsdate", "filingdate", "published", "datetime"},
	colTime:     {"time", "newstime"},
	colHeadline: {"headline", "title", "newstitle", "news"},
	colSource:   {"source", "newssource", "publisher"},
	colLink:     {"link", "url", "newsurl", "filinglink", "href"},
	colForm:     {"filing", "form", "formtype", "type"},
}

// normalizeKey lowercases a header token and drops whitespace and punctuation,
// so "Rel Volume", "rel_volume" and "RelVolume" all become "relvolume".
func normalizeKey(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(header) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// resolveColumns maps each requested logical column to its index in header.
// Absent columns are simply missing from the result.
func resolveColumns(header []string, columns ...column) map[column]int {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeKey(h)
		if _, exists := positions[key]; !exists {
			positions[key] = i
		}
	}

	resolved := make(map[column]int, len(columns))
	for _, col := range columns {
		for _, synonym := range synonyms[col] {
			if idx, ok := positions[synonym]; ok {
				resolved[col] = idx
				break
			}
		}
	}
	return resolved
}

// index returns the resolved position of col, or -1
func index(resolved map[column]int, col column) int {
	if idx, ok := resolved[col]; ok {
		return idx
	}
	return -1
}
