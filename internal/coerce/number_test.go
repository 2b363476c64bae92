package coerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{"plain", "2.53", 2.53},
		{"integer", "42", 42},
		{"negative", "-3.5", -3.5},
		{"percent", "9.10%", 9.1},
		{"signed percent", "+12.5%", 12.5},
		{"dollar", "$1.25", 1.25},
		{"thousands", "1,234,567", 1234567},
		{"whitespace", "  7.5  ", 7.5},
		{"quoted", `"3.14"`, 3.14},
		{"decimal comma", "2,53", 2.53},
		{"suffix M", "9.54M", 9_540_000},
		{"suffix lower k", "12k", 12_000},
		{"suffix B", "1.2B", 1_200_000_000},
		{"suffix T", "0.5T", 500_000_000_000},
		{"suffix with space", "3.1 M", 3_100_000},
		{"float input", 1.8, 1.8},
		{"int input", 15, 15},
		{"int64 input", int64(15300000000), 15300000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Number(tt.input)
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 1e-6)
		})
	}
}

func TestNumber_Absent(t *testing.T) {
	inputs := []any{nil, "", "   ", "-", "N/A", "null", "undefined", "abc", "12X", "NaN", "Inf", "1.2.3", []int{1}}

	for _, input := range inputs {
		assert.Nil(t, Number(input), "input %#v", input)
	}
}

func TestNumber_SuffixMultipliers(t *testing.T) {
	for suffix, mult := range map[string]float64{"K": 1e3, "M": 1e6, "B": 1e9, "T": 1e12} {
		for _, s := range []string{suffix, string(rune(suffix[0] + 32))} {
			got := Number("2.5" + s)
			require.NotNil(t, got, s)
			assert.InDelta(t, 2.5*mult, *got, 1e-3, s)
		}
	}
}

func TestInt(t *testing.T) {
	got := Int("1.5M")
	require.NotNil(t, got)
	assert.Equal(t, int64(1_500_000), *got)

	assert.Nil(t, Int("n/a"))
}
