// Package scraper extracts headline, link and time triples from loosely
// structured catalog pages (news listings and single-symbol quote pages).
package scraper

import (
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ternarybob/gapper/internal/coerce"
)

const (
	// MaxItemsPerPage caps the headlines taken from one page
	MaxItemsPerPage = 12

	// minLabelLength rejects navigation and icon links
	minLabelLength = 10

	// scanWindow bounds the backward scan for time and source tokens
	scanWindow = 450
)

var (
	boilerplatePattern = regexp.MustCompile(`(?i)^\s*(advertisement|feedback|sponsored|sign in|sign up|log ?in|register|subscribe|newsletter|privacy|terms of (use|service)|cookie|contact us|read more|see more|view (all|more)|more news|upgrade|premium|go to)\b`)

	timePattern   = regexp.MustCompile(`(?i)\b(\d{1,2}:\d{2}\s?[AP]M)\b`)
	datePattern   = regexp.MustCompile(`\b([A-Z][a-z]{2}-\d{2}-\d{2})\b`)
	sourcePattern = regexp.MustCompile(`>\s*\(?([A-Z][A-Za-z0-9&.' \-]{1,29}?)\)?\s*<`)
	trailingParen = regexp.MustCompile(`\(([A-Z][A-Za-z0-9&.' \-]{1,29})\)`)

	tagPattern = regexp.MustCompile(`(?s)<[^>]*>`)

	entityReplacer = strings.NewReplacer("&nbsp;", " ", "&amp;", "&", "&quot;", `"`)
)

// cleanLabel strips inner tags, decodes the minimal entity set and collapses whitespace
func cleanLabel(inner string) string {
	text := tagPattern.ReplaceAllString(inner, " ")
	text = entityReplacer.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

// acceptAnchor applies the headline filters shared by every scraper
func acceptAnchor(href, label string) bool {
	if utf8.RuneCountInString(label) < minLabelLength {
		return false
	}
	lowerHref := strings.ToLower(strings.TrimSpace(href))
	if lowerHref == "" || strings.Contains(lowerHref, "javascript:") ||
		strings.HasPrefix(lowerHref, "#") || strings.HasPrefix(lowerHref, "mailto:") {
		return false
	}
	return !boilerplatePattern.MatchString(label)
}

// resolveURL makes href absolute against the page URL. Returns "" when the
// result is not an absolute http(s) URL.
func resolveURL(pageURL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(entityReplacer.Replace(href)))
	if err != nil {
		return ""
	}
	if !ref.IsAbs() {
		base, err := url.Parse(pageURL)
		if err != nil || !base.IsAbs() {
			return ""
		}
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}

// lastMatch returns the final capture of pattern in text, or ""
func lastMatch(pattern *regexp.Regexp, text string) string {
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return ""
	}
	return strings.TrimSpace(matches[len(matches)-1][1])
}

// nearbySource picks the last short capitalized text node in window that is
// not itself a date or time token
func nearbySource(window string) string {
	matches := sourcePattern.FindAllStringSubmatch(window, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		candidate := strings.TrimSpace(matches[i][1])
		if candidate == "" || timePattern.MatchString(candidate) || datePattern.MatchString(candidate) {
			continue
		}
		return candidate
	}
	return ""
}

// publishedAt combines the carried date token with a time token
func publishedAt(date, clock string) *time.Time {
	if clock == "" {
		return nil
	}
	return coerce.Timestamp(date, clock)
}

// hostname is the fallback source for items with no source token
func hostname(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
