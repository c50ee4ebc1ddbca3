// Package holidays resolves the fixed observed-holiday table for a region and
// caches it behind a database-backed service. Every supported region is
// computed from fixed civic rules, so no external feed is involved.
package holidays

import (
	"fmt"
	"time"

	"github.com/bruno.lopes/dutyplanner/internal/domain"
)

// Holiday is one observed holiday on the calendar.
type Holiday struct {
	Date time.Time
	Name string
}

// SupportedRegions lists every region code GetHolidays accepts.
var SupportedRegions = []string{"Canada/QC", "Canada/ON", "USA/CA", "USA/NY"}

// GetHolidays returns the fixed-rule holiday table for region and year,
// wrapping domain.ErrUnsupportedRegion for anything not in SupportedRegions.
func GetHolidays(region string, year int) ([]Holiday, error) {
	switch region {
	case "Canada/QC":
		return canadaFederalHolidays(year, true), nil
	case "Canada/ON":
		return canadaFederalHolidays(year, false), nil
	case "USA/CA":
		return usaFederalHolidays(year, false), nil
	case "USA/NY":
		return usaFederalHolidays(year, true), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedRegion, region)
	}
}

func canadaFederalHolidays(year int, quebec bool) []Holiday {
	easter := calculateEaster(year)
	hs := []Holiday{
		{date(year, 1, 1), "New Year's Day"},
		{easter.AddDate(0, 0, -2), "Good Friday"},
		{nthWeekdayBefore(year, 5, 24, time.Monday), "Victoria Day"},
		{date(year, 7, 1), "Canada Day"},
		{nthWeekdayOfMonth(year, 9, time.Monday, 1), "Labour Day"},
		{nthWeekdayOfMonth(year, 10, time.Monday, 2), "Thanksgiving"},
		{date(year, 11, 11), "Remembrance Day"},
		{date(year, 12, 25), "Christmas Day"},
		{date(year, 12, 26), "Boxing Day"},
	}
	if quebec {
		hs = append(hs, Holiday{date(year, 6, 24), "Saint-Jean-Baptiste Day"})
	} else {
		hs = append(hs, Holiday{nthWeekdayOfMonth(year, 8, time.Monday, 1), "Civic Holiday"})
	}
	return sortHolidays(hs)
}

func usaFederalHolidays(year int, newYork bool) []Holiday {
	hs := []Holiday{
		{date(year, 1, 1), "New Year's Day"},
		{nthWeekdayOfMonth(year, 1, time.Monday, 3), "Martin Luther King Jr. Day"},
		{nthWeekdayOfMonth(year, 2, time.Monday, 3), "Presidents Day"},
		{nthWeekdayOfMonthFromEnd(year, 5, time.Monday), "Memorial Day"},
		{date(year, 6, 19), "Juneteenth"},
		{date(year, 7, 4), "Independence Day"},
		{nthWeekdayOfMonth(year, 9, time.Monday, 1), "Labor Day"},
		{nthWeekdayOfMonth(year, 10, time.Monday, 2), "Columbus Day"},
		{date(year, 11, 11), "Veterans Day"},
		{nthWeekdayOfMonth(year, 11, time.Thursday, 4), "Thanksgiving"},
		{date(year, 12, 25), "Christmas Day"},
	}
	if newYork {
		hs = append(hs, Holiday{date(year, 2, 12), "Lincoln's Birthday"})
	}
	return sortHolidays(hs)
}

// calculateEaster returns Easter Sunday for year via the Anonymous Gregorian
// algorithm.
func calculateEaster(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// nthWeekdayOfMonth returns the nth occurrence of weekday in month (n is 1-based).
func nthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	d := date(year, month, 1)
	offset := int(weekday) - int(d.Weekday())
	if offset < 0 {
		offset += 7
	}
	return d.AddDate(0, 0, offset+7*(n-1))
}

// nthWeekdayOfMonthFromEnd returns the last occurrence of weekday in month.
func nthWeekdayOfMonthFromEnd(year int, month time.Month, weekday time.Weekday) time.Time {
	lastDay := date(year, month+1, 1).AddDate(0, 0, -1)
	offset := int(lastDay.Weekday()) - int(weekday)
	if offset < 0 {
		offset += 7
	}
	return lastDay.AddDate(0, 0, -offset)
}

// nthWeekdayBefore returns the closest weekday on or before the given
// month/day, used for Victoria Day (the Monday on or before May 24).
func nthWeekdayBefore(year int, month time.Month, day int, weekday time.Weekday) time.Time {
	d := date(year, month, day)
	offset := int(d.Weekday()) - int(weekday)
	if offset < 0 {
		offset += 7
	}
	return d.AddDate(0, 0, -offset)
}

func sortHolidays(hs []Holiday) []Holiday {
	for i := 1; i < len(hs); i++ {
		for j := i; j > 0 && hs[j].Date.Before(hs[j-1].Date); j-- {
			hs[j], hs[j-1] = hs[j-1], hs[j]
		}
	}
	return hs
}
