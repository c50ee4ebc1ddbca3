// Package ics renders a solved schedule as an RFC 5545 calendar, one all-day
// VEVENT per (physician, task) assignment.
package ics

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/bruno.lopes/dutyplanner/internal/scheduler"
)

const productID = "-//dutyplanner//Physician Duty Scheduler//EN"

// Export renders every Assignment in byPhysician as one VEVENT per task
// occurrence and writes the resulting VCALENDAR to w. The end date is
// exclusive, one day past the task's last day, since the DATE value type
// treats DTEND as non-inclusive.
func Export(w io.Writer, byPhysician map[string][]scheduler.Assignment) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for physician, assignments := range byPhysician {
		for _, a := range assignments {
			cal.Children = append(cal.Children, toEvent(physician, a).Component)
		}
	}

	return ical.NewEncoder(w).Encode(cal)
}

func toEvent(physician string, a scheduler.Assignment) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uuid.NewString())
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDate(ical.PropDateTimeStart, a.StartDate)
	event.Props.SetDate(ical.PropDateTimeEnd, a.EndDate.AddDate(0, 0, 1))
	event.Props.SetText(ical.PropSummary, fmt.Sprintf("%s - %s", a.TaskName, physician))
	event.Props.SetText(ical.PropDescription, fmt.Sprintf(
		"Task: %s\nPhysician: %s\nScore: %d", a.TaskName, physician, a.Score))
	return event
}
