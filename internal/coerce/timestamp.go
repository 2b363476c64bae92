package coerce

import (
	"strings"
	"time"
)

// dateTimeLayouts are tried against "date time" when both parts are present,
// and against the date alone when no time is given.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 03:04PM",
	"2006-01-02 3:04PM",
	"2006-01-02 03:04 PM",
	"01/02/2006 03:04PM",
	"01/02/2006 3:04PM",
	"01/02/2006 03:04 PM",
	"01/02/2006 3:04 PM",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
	"1/2/2006 3:04PM",
	"1/2/2006 15:04",
	"Jan-02-06 03:04PM",
	"Jan-02-06 3:04PM",
	"Jan 2, 2006 3:04 PM",
	time.RFC1123Z,
	time.RFC1123,
}

var dateOnlyLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"Jan-02-06",
	"Jan 2, 2006",
}

var timeOnlyLayouts = []string{
	"03:04PM",
	"3:04PM",
	"03:04 PM",
	"3:04 PM",
	"15:04:05",
	"15:04",
}

// Timestamp parses a provider date and time-of-day pair into UTC.
// Both parts present: the concatenation is parsed. Otherwise the time-of-day
// alone is parsed onto the epoch date (1970-01-01). A date with no time is
// parsed as midnight. Returns nil when nothing parses.
func Timestamp(dateRaw, timeRaw string) *time.Time {
	date := strings.TrimSpace(dateRaw)
	clock := strings.ToUpper(strings.TrimSpace(timeRaw))

	if date != "" && clock != "" {
		if t := parseAny(date+" "+clock, dateTimeLayouts); t != nil {
			return t
		}
	}

	if clock != "" {
		if t := parseAny(clock, timeOnlyLayouts); t != nil {
			epoch := time.Date(1970, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
			return &epoch
		}
	}

	if date != "" && clock == "" {
		if t := parseAny(date, dateTimeLayouts); t != nil {
			return t
		}
		return parseAny(date, dateOnlyLayouts)
	}

	return nil
}

func parseAny(value string, layouts []string) *time.Time {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
