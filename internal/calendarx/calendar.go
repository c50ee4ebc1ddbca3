// Package calendarx segments a scheduling horizon into working/weekend/call
// days and, from those, into the MAIN and CALL period intervals the CP core
// builds MathTasks from.
package calendarx

import (
	"sort"
	"time"
)

// Calendar is the horizon [Start, End] (inclusive) for one region, with its
// derived working/weekend/call day sets.
type Calendar struct {
	Start       time.Time
	End         time.Time
	Region      string
	Holidays    []time.Time
	WorkingDays []time.Time
	WeekendDays []time.Time
	CallDays    []time.Time
}

// HolidayLookup resolves the holidays observed in a region for a given year.
type HolidayLookup interface {
	Holidays(region string, year int) ([]time.Time, error)
}

// New builds a Calendar for [start, end], loading holidays from lookup when
// holidays is nil.
func New(start, end time.Time, region string, holidays []time.Time, lookup HolidayLookup) (*Calendar, error) {
	start, end = dateOnly(start), dateOnly(end)
	if holidays == nil {
		var err error
		holidays, err = loadHolidays(start, end, region, lookup)
		if err != nil {
			return nil, err
		}
	}
	c := &Calendar{Start: start, End: end, Region: region, Holidays: sortedUnique(holidays)}
	c.WorkingDays = c.computeWorkingDays()
	c.WeekendDays = c.computeWeekendDays()
	c.CallDays = c.computeCallDays()
	return c, nil
}

func loadHolidays(start, end time.Time, region string, lookup HolidayLookup) ([]time.Time, error) {
	var all []time.Time
	for year := start.Year(); year <= end.Year(); year++ {
		ys, err := lookup.Holidays(region, year)
		if err != nil {
			return nil, err
		}
		all = append(all, ys...)
	}
	var inRange []time.Time
	for _, h := range all {
		h = dateOnly(h)
		if !h.Before(start) && !h.After(end) {
			inRange = append(inRange, h)
		}
	}
	return inRange, nil
}

func (c *Calendar) computeWorkingDays() []time.Time {
	var days []time.Time
	holidaySet := toSet(c.Holidays)
	for d := c.Start; !d.After(c.End); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday && !holidaySet[d] {
			days = append(days, d)
		}
	}
	return days
}

func (c *Calendar) computeWeekendDays() []time.Time {
	var days []time.Time
	for d := c.Start; !d.After(c.End); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			days = append(days, d)
		}
	}
	return days
}

func (c *Calendar) computeCallDays() []time.Time {
	set := toSet(c.WeekendDays)
	for _, h := range c.Holidays {
		set[h] = true
	}
	var days []time.Time
	for d := range set {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// IsWorkingDay, IsCallDay are convenience membership tests used by the
// materializer and tests.
func (c *Calendar) IsWorkingDay(d time.Time) bool { return toSet(c.WorkingDays)[dateOnly(d)] }
func (c *Calendar) IsCallDay(d time.Time) bool    { return toSet(c.CallDays)[dateOnly(d)] }

func toSet(days []time.Time) map[time.Time]bool {
	set := make(map[time.Time]bool, len(days))
	for _, d := range days {
		set[dateOnly(d)] = true
	}
	return set
}

func sortedUnique(days []time.Time) []time.Time {
	set := toSet(days)
	out := make([]time.Time, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddHoliday inserts a holiday and recomputes the derived day sets.
func (c *Calendar) AddHoliday(d time.Time) {
	d = dateOnly(d)
	for _, h := range c.Holidays {
		if h.Equal(d) {
			return
		}
	}
	c.Holidays = sortedUnique(append(c.Holidays, d))
	c.WorkingDays = c.computeWorkingDays()
	c.CallDays = c.computeCallDays()
}
