package confidence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ternarybob/gapper/internal/models"
)

const (
	systemPrompt = "You rate US small-cap stocks for a same-day momentum trade. " +
		"Reply with a single number between 0 and 1 and nothing else, where 1 means a strong setup."

	maxPromptHeadlines = 5
)

var numberPattern = regexp.MustCompile(`[-+]?\d*\.?\d+`)

// buildPrompt renders the snapshot and its newest headlines
func buildPrompt(snap models.StockSnapshot, news []models.NewsItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticker: %s\n", snap.Ticker)
	if snap.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", snap.Company)
	}
	writeFloat(&b, "Price", snap.Price, "%.2f")
	writeFloat(&b, "Change %", snap.ChangePct, "%.2f")
	writeFloat(&b, "Gap %", snap.GapPct, "%.2f")
	writeFloat(&b, "Relative volume", snap.RelativeVolume, "%.2f")
	writeFloat(&b, "Float (millions)", snap.FloatMillions(), "%.1f")
	writeFloat(&b, "RSI(14)", snap.RSI, "%.1f")

	if len(news) > 0 {
		b.WriteString("Headlines:\n")
		for i, item := range news {
			if i == maxPromptHeadlines {
				break
			}
			if item.CatalystTag != models.CatalystNone {
				fmt.Fprintf(&b, "- [%s] %s\n", item.CatalystTag, item.Headline)
			} else {
				fmt.Fprintf(&b, "- %s\n", item.Headline)
			}
		}
	}
	return b.String()
}

func writeFloat(b *strings.Builder, label string, v *float64, format string) {
	if v == nil {
		return
	}
	fmt.Fprintf(b, "%s: "+format+"\n", label, *v)
}

// parseConfidence reads the first number in a model reply. Percentages
// (1 < n <= 100) are scaled down.
func parseConfidence(reply string) (*float64, error) {
	match := numberPattern.FindString(reply)
	if match == "" {
		return nil, fmt.Errorf("no number in reply %q", truncate(reply, 80))
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse confidence %q: %w", match, err)
	}
	if v > 1 && v <= 100 {
		v /= 100
	}
	if v < 0 || v > 1 {
		return nil, fmt.Errorf("confidence %v out of range", v)
	}
	return &v, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
