package technicals

import (
	"time"
	_ "time/tzdata"

	"github.com/scmhub/calendar"
)

// RegularSessionMinutes is the length of a full US equity session
const RegularSessionMinutes = 390

// Session is one regular trading session
type Session struct {
	Open  time.Time
	Close time.Time
}

// Minutes returns the session length in minutes
func (s Session) Minutes() float64 {
	return s.Close.Sub(s.Open).Minutes()
}

// ElapsedMinutes returns minutes since the open at now, clamped to
// [1, session length]. After the close it is the full session.
func (s Session) ElapsedMinutes(now time.Time) float64 {
	return clamp(now.Sub(s.Open).Minutes(), 1, s.Minutes())
}

// Contains reports whether t falls inside the session
func (s Session) Contains(t time.Time) bool {
	return !t.Before(s.Open) && t.Before(s.Close)
}

// SessionClock resolves the regular session for a calendar day
type SessionClock interface {
	// Session returns the session on the exchange-local day of t, and false
	// when the exchange is closed that day
	Session(t time.Time) (Session, bool)
}

// ExchangeClock reads sessions and holidays from an exchange calendar
type ExchangeClock struct {
	cal *calendar.Calendar
	loc *time.Location
}

// NewExchangeClock loads the calendar for an ISO 10383 MIC (e.g. "xnys").
// Falls back to a Monday to Friday 09:30-16:00 New York clock when the
// calendar is unavailable.
func NewExchangeClock(mic string) SessionClock {
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}
	if cal == nil {
		return NewWeekdayClock()
	}
	loc := cal.Loc
	if loc == nil {
		loc = newYork()
	}
	return &ExchangeClock{cal: cal, loc: loc}
}

// Session implements SessionClock. Early closes are detected by probing the
// calendar at the 13:00 half-day close.
func (c *ExchangeClock) Session(t time.Time) (Session, bool) {
	local := t.In(c.loc)
	if !c.cal.IsBusinessDay(local) {
		return Session{}, false
	}

	year, month, day := local.Date()
	open := time.Date(year, month, day, 9, 30, 0, 0, c.loc)
	closeAt := time.Date(year, month, day, 16, 0, 0, 0, c.loc)

	halfDay := time.Date(year, month, day, 13, 0, 0, 0, c.loc)
	if c.cal.IsOpen(halfDay.Add(-time.Minute)) && !c.cal.IsOpen(halfDay.Add(time.Minute)) {
		closeAt = halfDay
	}

	return Session{Open: open, Close: closeAt}, true
}

// WeekdayClock is a fixed Monday to Friday 09:30-16:00 clock with no holidays
type WeekdayClock struct {
	loc *time.Location
}

// NewWeekdayClock creates a New York weekday clock
func NewWeekdayClock() *WeekdayClock {
	return &WeekdayClock{loc: newYork()}
}

// Session implements SessionClock
func (c *WeekdayClock) Session(t time.Time) (Session, bool) {
	local := t.In(c.loc)
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return Session{}, false
	}
	year, month, day := local.Date()
	return Session{
		Open:  time.Date(year, month, day, 9, 30, 0, 0, c.loc),
		Close: time.Date(year, month, day, 16, 0, 0, 0, c.loc),
	}, true
}

func newYork() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}
