// Package coerce parses loosely typed scalars from provider exports.
// Every function returns nil instead of an error when the input does not parse.
package coerce

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var (
	// suffixPattern matches "<number><K|M|B|T>" after cleaning
	suffixPattern = regexp.MustCompile(`(?i)^([-+]?(?:\d+\.?\d*|\.\d+))\s*([KMBT])$`)

	// decimalComma matches "2,53" style values from semicolon exports; a group of
	// exactly three digits after the comma is read as a thousands separator
	decimalComma = regexp.MustCompile(`^[-+]?\d+,(\d{1,2}|\d{4,})[KMBTkmbt]?$`)

	multipliers = map[string]float64{
		"K": 1e3,
		"M": 1e6,
		"B": 1e9,
		"T": 1e12,
	}

	// placeholders providers emit for missing cells
	placeholders = map[string]bool{
		"":          true,
		"-":         true,
		"--":        true,
		"N/A":       true,
		"NA":        true,
		"NULL":      true,
		"NONE":      true,
		"UNDEFINED": true,
		"NAN":       true,
	}
)

// Number coerces raw into a float. It accepts numbers, numeric strings with
// "%", "$", thousands separators and surrounding whitespace, and magnitude
// suffixes ("9.54M" -> 9540000). Returns nil for anything unparseable.
func Number(raw any) *float64 {
	if raw == nil {
		return nil
	}

	switch v := raw.(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil
		}
		return finite(f)
	case *float64:
		if v == nil {
			return nil
		}
		return finite(*v)
	}

	s, err := cast.ToStringE(raw)
	if err != nil {
		return nil
	}
	return parseString(s)
}

// Int coerces raw into an integer, truncating any fraction.
func Int(raw any) *int64 {
	f := Number(raw)
	if f == nil || *f > math.MaxInt64 || *f < math.MinInt64 {
		return nil
	}
	i := int64(*f)
	return &i
}

func parseString(s string) *float64 {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.Trim(cleaned, `"'`)
	cleaned = strings.NewReplacer("%", "", "$", "", " ", "").Replace(cleaned)

	if decimalComma.MatchString(cleaned) {
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	if placeholders[strings.ToUpper(cleaned)] {
		return nil
	}

	if m := suffixPattern.FindStringSubmatch(cleaned); m != nil {
		base, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil
		}
		return finite(base * multipliers[strings.ToUpper(m[2])])
	}

	f, err := cast.ToFloat64E(cleaned)
	if err != nil {
		return nil
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
