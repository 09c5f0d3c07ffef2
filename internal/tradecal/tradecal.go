// Package tradecal maps instrument regions to exchange trading calendars
// so the sync engine can skip upstream calls for windows with no session.
package tradecal

import (
	"time"

	"github.com/scmhub/calendar"
)

// regionMIC maps a registry region tag to an ISO 10383 MIC understood by
// scmhub/calendar.
var regionMIC = map[string]string{
	"US": "xnys",
	"TW": "xtai",
	"JP": "xtks",
	"UK": "xlon",
	"DE": "xfra",
	"HK": "xhkg",
}

// Calendar answers trading-day questions for one region. A nil inner
// calendar falls back to Monday-Friday.
type Calendar struct {
	cal *calendar.Calendar
}

// ForRegion returns the calendar for a region tag. Unknown regions (and
// the "Global" tag) get the Monday-Friday fallback rather than no
// calendar, since cross-region instruments trade somewhere every weekday.
func ForRegion(region string) *Calendar {
	mic, ok := regionMIC[region]
	if !ok {
		return &Calendar{}
	}
	// GetCalendar returns nil for MICs the library does not know; the
	// weekday fallback covers that too.
	return &Calendar{cal: calendar.GetCalendar(mic)}
}

// IsTradingDay reports whether date is a session day.
func (c *Calendar) IsTradingDay(date time.Time) bool {
	if c.cal == nil {
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	// The library keys holidays on midnight instants in the exchange's
	// own location; a UTC-midnight probe would never match them.
	y, m, d := date.Date()
	return c.cal.IsBusinessDay(time.Date(y, m, d, 0, 0, 0, 0, c.cal.Loc))
}

// HasTradingDay reports whether [start, end] contains at least one session
// day. Both bounds are inclusive calendar dates.
func (c *Calendar) HasTradingDay(start, end time.Time) bool {
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsTradingDay(d) {
			return true
		}
	}
	return false
}
