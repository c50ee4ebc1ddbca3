package calendarx

import (
	"sort"
	"time"
)

// PeriodType tags a PeriodInterval as a working-day run or a call-day run.
type PeriodType string

const (
	Main PeriodType = "MAIN"
	Call PeriodType = "CALL"
)

// PeriodInterval is a maximal run of consecutive dates of one kind.
type PeriodInterval struct {
	Type PeriodType
	Days []time.Time
}

// Start and End return the interval's first and last day.
func (p PeriodInterval) Start() time.Time { return p.Days[0] }
func (p PeriodInterval) End() time.Time   { return p.Days[len(p.Days)-1] }

const isoWeek = "2006-01-02"

// callPeriodRef locates a previously-inserted CALL PeriodInterval so a later,
// longer view of the same run (carried across a week boundary) can update it
// in place rather than being silently dropped by the dedup check.
type callPeriodRef struct {
	weekKey string
	index   int
}

// Segment partitions the calendar's horizon into per-week-Monday lists of
// MAIN and CALL PeriodIntervals. MAIN runs split at any non-working day and
// never cross a week boundary; CALL runs carry across the boundary and split
// at the midpoint once they reach four days. For a fixed holiday set the
// result is a pure function of the horizon.
func Segment(c *Calendar) map[string][]PeriodInterval {
	periods := make(map[string][]PeriodInterval)
	addedCallPeriods := make(map[string]callPeriodRef)

	var previousCallPeriod []time.Time
	current := c.Start

	for !current.After(c.End) {
		weekStart := mondayOf(current)
		weekEnd := weekStart.AddDate(0, 0, 6)

		var weekDays []time.Time
		for i := 0; i < 7; i++ {
			d := weekStart.AddDate(0, 0, i)
			if !d.After(c.End) {
				weekDays = append(weekDays, d)
			}
		}

		// MAIN periods: maximal runs of consecutive working days in the week.
		var mainPeriod []time.Time
		for _, d := range weekDays {
			if c.IsWorkingDay(d) {
				mainPeriod = append(mainPeriod, d)
			} else if len(mainPeriod) > 0 {
				periods[weekStart.Format(isoWeek)] = append(periods[weekStart.Format(isoWeek)],
					PeriodInterval{Type: Main, Days: mainPeriod})
				mainPeriod = nil
			}
		}
		if len(mainPeriod) > 0 {
			periods[weekStart.Format(isoWeek)] = append(periods[weekStart.Format(isoWeek)],
				PeriodInterval{Type: Main, Days: mainPeriod})
		}

		// CALL periods: maximal runs of consecutive call days, carried across
		// the week boundary via previousCallPeriod.
		callPeriod := previousCallPeriod
		for _, d := range weekDays {
			if c.IsCallDay(d) {
				callPeriod = append(callPeriod, d)
			} else if len(callPeriod) > 0 {
				addCallPeriods(periods, weekStart, callPeriod, addedCallPeriods)
				callPeriod = nil
			}
		}
		if len(callPeriod) > 0 {
			addCallPeriods(periods, weekStart, callPeriod, addedCallPeriods)
			previousCallPeriod = callPeriod
		} else {
			previousCallPeriod = nil
		}

		current = weekEnd.AddDate(0, 0, 1)
	}

	return periods
}

// addCallPeriods applies the week-start recomputation and midpoint-split
// rules, then dedups by first-day key.
func addCallPeriods(periods map[string][]PeriodInterval, weekStart time.Time, callPeriod []time.Time, added map[string]callPeriodRef) {
	if callPeriod[0].Weekday() != time.Saturday && callPeriod[0].Weekday() != time.Sunday {
		// First call day is a weekday (a holiday): recompute the week-start
		// from that day's Monday.
		weekStart = mondayOf(callPeriod[0])
	}

	if len(callPeriod) >= 4 {
		mid := len(callPeriod) / 2
		addSingleCallPeriod(periods, weekStart, callPeriod[:mid], added)
		addSingleCallPeriod(periods, weekStart, callPeriod[mid:], added)
	} else {
		addSingleCallPeriod(periods, weekStart, callPeriod, added)
	}
}

// addSingleCallPeriod inserts one CALL period keyed by its first day. A run
// that carries across a week boundary is revisited here with more days each
// time the boundary week is processed; when that happens this updates the
// already-inserted interval's Days in place instead of adding a duplicate.
func addSingleCallPeriod(periods map[string][]PeriodInterval, weekStart time.Time, callPeriod []time.Time, added map[string]callPeriodRef) {
	key := callPeriod[0].Format(isoWeek)
	days := append([]time.Time(nil), callPeriod...)
	if ref, ok := added[key]; ok {
		periods[ref.weekKey][ref.index].Days = days
		return
	}
	weekKey := weekStart.Format(isoWeek)
	periods[weekKey] = append(periods[weekKey], PeriodInterval{Type: Call, Days: days})
	added[key] = callPeriodRef{weekKey: weekKey, index: len(periods[weekKey]) - 1}
}

func mondayOf(d time.Time) time.Time {
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return d.AddDate(0, 0, -offset)
}

// SortedWeekKeys returns the periods map's week-start keys in ascending ISO
// date order, the deterministic iteration order required by §5.
func SortedWeekKeys(periods map[string][]PeriodInterval) []string {
	keys := make([]string, 0, len(periods))
	for k := range periods {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
