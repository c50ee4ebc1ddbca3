package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/require"

	"github.com/bruno.lopes/dutyplanner/internal/scheduler"
)

func TestExportRendersOneEventPerAssignment(t *testing.T) {
	byPhysician := map[string][]scheduler.Assignment{
		"Alice Smith": {
			{
				TaskName:  "CTU_A",
				Physician: "Alice Smith",
				StartDate: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC),
				Score:     42,
			},
			{
				TaskName:  "ER_1",
				Physician: "Alice Smith",
				StartDate: time.Date(2023, 1, 16, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2023, 1, 20, 0, 0, 0, 0, time.UTC),
				Score:     7,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, byPhysician))

	dec := ical.NewDecoder(&buf)
	cal, err := dec.Decode()
	require.NoError(t, err, "rendered calendar did not decode as valid iCalendar")

	var events []*ical.Component
	for _, child := range cal.Children {
		if child.Name == ical.CompEvent {
			events = append(events, child)
		}
	}
	require.Len(t, events, 2)

	for _, ev := range events {
		summary := ev.Props.Get(ical.PropSummary)
		require.NotNil(t, summary)
		require.Contains(t, summary.Value, "Alice Smith")
		uid := ev.Props.Get(ical.PropUID)
		require.NotNil(t, uid)
		require.NotEmpty(t, uid.Value)
	}
}

// TestExportEndDateIsExclusive checks that a one-day assignment (start == end)
// still produces a DTEND one day past DTSTART, per go-ical's DATE-value
// semantics (a non-inclusive end).
func TestExportEndDateIsExclusive(t *testing.T) {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	byPhysician := map[string][]scheduler.Assignment{
		"Bob Jones": {
			{TaskName: "CTU_A_CALL", Physician: "Bob Jones", StartDate: start, EndDate: start, Score: 1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, byPhysician))

	dec := ical.NewDecoder(&buf)
	cal, err := dec.Decode()
	require.NoError(t, err)
	event := cal.Children[0]

	dtstart, err := event.Props.DateTime(ical.PropDateTimeStart, time.UTC)
	require.NoError(t, err)
	dtend, err := event.Props.DateTime(ical.PropDateTimeEnd, time.UTC)
	require.NoError(t, err)
	require.True(t, dtend.Equal(dtstart.AddDate(0, 0, 1)), "DTEND = %v, want one day past DTSTART %v", dtend, dtstart)
}

func TestExportDescriptionIncludesScore(t *testing.T) {
	byPhysician := map[string][]scheduler.Assignment{
		"Carol Doe": {
			{
				TaskName:  "ER_CALL",
				Physician: "Carol Doe",
				StartDate: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
				Score:     99,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, byPhysician))
	require.Contains(t, buf.String(), "Score: 99", "rendered calendar missing the assignment's score in its description")
}
