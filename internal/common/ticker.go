// Package common provides shared utilities across the application.
package common

import (
	"regexp"
	"strings"
)

// symbolPattern accepts US equity symbols with an optional share-class suffix
// (e.g., "AAPL", "BRK.B", "BF-B").
var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,5}([.\-][A-Z0-9]{1,2})?$`)

// symbolSeparators are the characters that separate symbols inside a single cell.
const symbolSeparators = " ,;/\t"

// NormalizeSymbol parses a single symbol token.
// Supports formats:
//   - "aapl" -> "AAPL" (normalized to uppercase)
//   - " $TSLA " -> "TSLA" (cashtag and whitespace stripped)
//   - "NASDAQ:AAPL" -> "AAPL" (exchange prefix dropped)
//   - "brk.b" -> "BRK.B"
//
// Returns "" when the token is not a plausible symbol.
func NormalizeSymbol(raw string) string {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	symbol = strings.Trim(symbol, `"'`)
	symbol = strings.TrimPrefix(symbol, "$")

	// Drop exchange prefix (EXCHANGE:CODE)
	if idx := strings.Index(symbol, ":"); idx >= 0 {
		symbol = symbol[idx+1:]
	}

	if !symbolPattern.MatchString(symbol) {
		return ""
	}
	return symbol
}

// SplitSymbols splits a cell that may carry several symbols separated by
// spaces, commas, semicolons or slashes. Invalid tokens and repeats are dropped,
// order is preserved.
func SplitSymbols(cell string) []string {
	fields := strings.FieldsFunc(cell, func(r rune) bool {
		return strings.ContainsRune(symbolSeparators, r)
	})

	result := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, field := range fields {
		symbol := NormalizeSymbol(field)
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		result = append(result, symbol)
	}
	return result
}

// NormalizeSymbols normalizes a configured list of symbols, dropping invalid
// entries and duplicates.
func NormalizeSymbols(symbols []string) []string {
	result := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		for _, symbol := range SplitSymbols(s) {
			if !seen[symbol] {
				seen[symbol] = true
				result = append(result, symbol)
			}
		}
	}
	return result
}

// EODHDSymbol returns the EODHD API symbol format.
// EODHD uses CODE.EXCHANGE with share classes joined by a dash.
// Example: "BRK.B" -> "BRK-B.US"
func EODHDSymbol(symbol string) string {
	if symbol == "" {
		return ""
	}
	return strings.ReplaceAll(symbol, ".", "-") + ".US"
}

// ExpandTemplate substitutes {ticker} in a URL template.
func ExpandTemplate(template, symbol string) string {
	return strings.ReplaceAll(template, "{ticker}", symbol)
}
